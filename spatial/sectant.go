package spatial

import "github.com/achilleasa/svoxtrace/types"

// OOBSectant is the sentinel sectant value meaning "out of bounds / no
// target". Sectant indices proper are always in [0,63].
const OOBSectant uint8 = 64

// SectantAt maps a point p inside cube c to one of the 4x4x4 children:
// each axis is quantised by floor(4*(p-origin)/size), clamped to [0,3],
// then packed x + 4*y + 16*z.
func SectantAt(c Cube, p types.Vec3) uint8 {
	x := quantizeAxis(p[0], c.Origin[0], c.Size)
	y := quantizeAxis(p[1], c.Origin[1], c.Size)
	z := quantizeAxis(p[2], c.Origin[2], c.Size)
	return x | y<<2 | z<<4
}

func quantizeAxis(p, origin, size float32) uint8 {
	q := int32(4 * (p - origin) / size)
	switch {
	case q < 0:
		return 0
	case q > 3:
		return 3
	default:
		return uint8(q)
	}
}

// DirectionOctant quantises a ray direction's signs into one of the 8
// octants of a cube centred at the origin, using the same axis-major
// packing as SectantAt. It indexes the ray-to-sectant occupancy mask table
// (see package voxel) alongside the ray's entry sectant.
func DirectionOctant(dir types.Vec3) uint8 {
	var o uint8
	if dir[0] > 0 {
		o |= 1
	}
	if dir[1] > 0 {
		o |= 2
	}
	if dir[2] > 0 {
		o |= 4
	}
	return o
}

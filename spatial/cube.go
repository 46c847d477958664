package spatial

import "github.com/achilleasa/svoxtrace/types"

// Cube is an axis-aligned cube with an origin at its minimum corner and a
// positive edge length. Tree geometry is expressed in a single world frame
// with integer edge lengths that are powers of four at the root, so sizes
// stay exactly representable under repeated division by four.
type Cube struct {
	Origin types.Vec3
	Size   float32
}

// Max returns the cube's maximum corner.
func (c Cube) Max() types.Vec3 {
	return types.XYZ(c.Origin[0]+c.Size, c.Origin[1]+c.Size, c.Origin[2]+c.Size)
}

// Center returns the cube's midpoint.
func (c Cube) Center() types.Vec3 {
	half := c.Size / 2
	return types.XYZ(c.Origin[0]+half, c.Origin[1]+half, c.Origin[2]+half)
}

// Contains reports whether p lies within the cube, within tolerance.
func (c Cube) Contains(p types.Vec3) bool {
	max := c.Max()
	for i := 0; i < 3; i++ {
		if p[i] < c.Origin[i]-tolerance || p[i] > max[i]+tolerance {
			return false
		}
	}
	return true
}

// Child returns the sub-cube occupying sectant s (0..63) of c. Sectant
// layout matches SectantAt: axis-major quantisation into a 4x4x4 grid with
// x + 4*y + 16*z indexing.
func (c Cube) Child(s uint8) Cube {
	quarter := c.Size / 4
	x := uint32(s) & 3
	y := (uint32(s) >> 2) & 3
	z := (uint32(s) >> 4) & 3
	return Cube{
		Origin: types.XYZ(
			c.Origin[0]+float32(x)*quarter,
			c.Origin[1]+float32(y)*quarter,
			c.Origin[2]+float32(z)*quarter,
		),
		Size: quarter,
	}
}

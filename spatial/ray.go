package spatial

import (
	"github.com/achilleasa/svoxtrace/types"
)

// directionEpsilon replaces exact-zero ray direction components so every
// axis division in the slab test and the DDA stays finite.
const directionEpsilon = 1e-8

// Ray is an origin point and a unit direction. Direction components are
// sanitised at construction time: an exact zero is nudged to a small
// epsilon of the same sign bit (positive, by convention) so downstream
// divisions never produce Inf/NaN.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
}

// NewRay builds a Ray from an origin and a (not necessarily unit) direction,
// normalizing it and sanitising zero components.
func NewRay(origin, direction types.Vec3) Ray {
	d := direction.Normalize()
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			d[i] = directionEpsilon
		}
	}
	return Ray{Origin: origin, Direction: d}
}

// PointAt returns the point reached by travelling distance d along the ray.
func (r Ray) PointAt(d float32) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(d))
}

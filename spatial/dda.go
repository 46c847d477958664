package spatial

import (
	"math"

	"github.com/achilleasa/svoxtrace/types"
)

// DDAScaleFactors returns, per axis, the Euclidean distance travelled along
// the ray for one unit of advance along that axis: sqrt(1 + (b/a)^2 +
// (c/a)^2) for the other two axes b, c. Computed once per ray.
func DDAScaleFactors(dir types.Vec3) types.Vec3 {
	return types.XYZ(
		scaleFactor(dir[0], dir[1], dir[2]),
		scaleFactor(dir[1], dir[0], dir[2]),
		scaleFactor(dir[2], dir[0], dir[1]),
	)
}

func scaleFactor(a, b, c float32) float32 {
	rb := b / a
	rc := c / a
	return float32(math.Sqrt(float64(1 + rb*rb + rc*rc)))
}

// DDAStep is the lattice step produced by one DDA advance: sign(direction)
// on every axis whose face distance equalled the minimum (within
// tolerance), zero otherwise.
type DDAStep struct {
	X, Y, Z int8
}

// IsZero reports whether no axis advanced (should not occur for a valid
// ray, but guards against degenerate bounds).
func (s DDAStep) IsZero() bool {
	return s.X == 0 && s.Y == 0 && s.Z == 0
}

// Advance computes, for each axis, the distance to the next face the ray
// will cross from point p while inside cellBounds, scaled by scale. It
// returns the new point and the lattice step to apply to the current cell
// index.
func Advance(p types.Vec3, dir types.Vec3, cellBounds Cube, scale types.Vec3) (types.Vec3, DDAStep) {
	max := cellBounds.Max()

	dist := [3]float32{}
	for i := 0; i < 3; i++ {
		var facePos float32
		if dir[i] > 0 {
			facePos = max[i]
		} else {
			facePos = cellBounds.Origin[i]
		}
		dist[i] = fabs32(facePos-p[i]) * scale[i]
	}

	min := dist[0]
	if dist[1] < min {
		min = dist[1]
	}
	if dist[2] < min {
		min = dist[2]
	}

	next := p.Add(dir.Mul(min))

	var step DDAStep
	if dist[0]-min <= tolerance {
		step.X = sign(dir[0])
	}
	if dist[1]-min <= tolerance {
		step.Y = sign(dir[1])
	}
	if dist[2]-min <= tolerance {
		step.Z = sign(dir[2])
	}
	return next, step
}

func fabs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v float32) int8 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

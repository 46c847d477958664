package spatial

import "github.com/achilleasa/svoxtrace/types"

// ImpactNormal determines which of the three axis-aligned faces of c the
// point p is closest to: the axis whose |center-p| component is largest
// wins, and its sign points outward. Ties (exact edges/corners) are
// resolved by summing all tied contributing axes and normalizing.
func ImpactNormal(c Cube, p types.Vec3) types.Vec3 {
	toImpact := c.Center().Sub(p)

	max := abs32(toImpact[0])
	if v := abs32(toImpact[1]); v > max {
		max = v
	}
	if v := abs32(toImpact[2]); v > max {
		max = v
	}

	n := types.Vec3{}
	if abs32(toImpact[0]) == max {
		n[0] = -toImpact[0]
	}
	if abs32(toImpact[1]) == max {
		n[1] = -toImpact[1]
	}
	if abs32(toImpact[2]) == max {
		n[2] = -toImpact[2]
	}
	return n.Normalize()
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

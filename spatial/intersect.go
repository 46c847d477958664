package spatial

// tolerance is the fixed absolute tolerance used for axis comparisons
// throughout spatial, per the traversal's numerical policy.
const tolerance = 1e-5

// Intersection is the result of a ray/cube test: a miss, an impact from
// outside the cube (ImpactDistance valid), or an origin-inside case where
// the ray starts within the cube and only an exit distance is meaningful.
type Intersection struct {
	Hit             bool
	OriginInside    bool
	ImpactDistance  float32 // valid when Hit && !OriginInside
	ExitDistance    float32 // valid when Hit
}

// IntersectRay runs the slab method against c: for each axis, compute the
// entry/exit parameters against the two parallel planes, take the max of
// the mins (tmin) and the min of the maxes (tmax).
func IntersectRay(c Cube, r Ray) Intersection {
	max := c.Max()

	t1 := (c.Origin[0] - r.Origin[0]) / r.Direction[0]
	t2 := (max[0] - r.Origin[0]) / r.Direction[0]
	t3 := (c.Origin[1] - r.Origin[1]) / r.Direction[1]
	t4 := (max[1] - r.Origin[1]) / r.Direction[1]
	t5 := (c.Origin[2] - r.Origin[2]) / r.Direction[2]
	t6 := (max[2] - r.Origin[2]) / r.Direction[2]

	tmin := fmax(fmin(t1, t2), fmax(fmin(t3, t4), fmin(t5, t6)))
	tmax := fmin(fmax(t1, t2), fmin(fmax(t3, t4), fmax(t5, t6)))

	if tmax < 0 || tmin > tmax {
		return Intersection{Hit: false}
	}

	if tmin < 0 {
		return Intersection{Hit: true, OriginInside: true, ImpactDistance: 0, ExitDistance: tmax}
	}

	return Intersection{Hit: true, ImpactDistance: tmin, ExitDistance: tmax}
}

func fmin(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func fmax(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

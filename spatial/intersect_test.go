package spatial

import (
	"testing"

	"github.com/achilleasa/svoxtrace/types"
)

func TestIntersectRayHitFromOutside(t *testing.T) {
	c := Cube{Origin: types.XYZ(0, 0, 0), Size: 4}
	r := NewRay(types.XYZ(-1, 2, 2), types.XYZ(1, 0, 0))

	got := IntersectRay(c, r)
	if !got.Hit || got.OriginInside {
		t.Fatalf("expected hit from outside, got %+v", got)
	}
	if abs32(got.ImpactDistance-1) > tolerance {
		t.Fatalf("expected impact distance 1, got %f", got.ImpactDistance)
	}
}

func TestIntersectRayMiss(t *testing.T) {
	c := Cube{Origin: types.XYZ(0, 0, 0), Size: 4}
	r := NewRay(types.XYZ(-1, -1, 2), types.XYZ(1, 0, 0))

	got := IntersectRay(c, r)
	if got.Hit {
		t.Fatalf("expected miss, got %+v", got)
	}
}

func TestIntersectRayOriginInside(t *testing.T) {
	c := Cube{Origin: types.XYZ(0, 0, 0), Size: 4}
	r := NewRay(types.XYZ(2, 2, 2), types.XYZ(0, 0, 1))

	got := IntersectRay(c, r)
	if !got.Hit || !got.OriginInside {
		t.Fatalf("expected origin-inside hit, got %+v", got)
	}
	if got.ImpactDistance != 0 {
		t.Fatalf("expected zero impact distance for origin-inside, got %f", got.ImpactDistance)
	}
}

// Slab test round-trip: reconstructing the impact point from the returned
// distance and testing cube containment must agree within tolerance.
func TestIntersectRayRoundTrip(t *testing.T) {
	c := Cube{Origin: types.XYZ(0, 0, 0), Size: 4}
	rays := []Ray{
		NewRay(types.XYZ(-2, 1, 1), types.XYZ(1, 0.3, -0.2)),
		NewRay(types.XYZ(1, -2, 1), types.XYZ(0.1, 1, 0.4)),
		NewRay(types.XYZ(5, 5, -2), types.XYZ(-1, -1, 1)),
	}
	for i, r := range rays {
		got := IntersectRay(c, r)
		if !got.Hit || got.OriginInside {
			continue
		}
		p := r.PointAt(got.ImpactDistance)
		if !c.Contains(p) {
			t.Fatalf("ray %d: reconstructed impact point %v not within cube", i, p)
		}
	}
}

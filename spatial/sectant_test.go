package spatial

import (
	"testing"

	"github.com/achilleasa/svoxtrace/types"
)

func TestSectantAtClampsToCube(t *testing.T) {
	c := Cube{Origin: types.XYZ(0, 0, 0), Size: 4}

	if got := SectantAt(c, types.XYZ(0, 0, 0)); got != 0 {
		t.Fatalf("expected sectant 0 at origin, got %d", got)
	}
	// x=1,y=1,z=1 within a 4^3 grid -> sectant 21 (1 + 4*1 + 16*1).
	if got := SectantAt(c, types.XYZ(1.5, 1.5, 1.5)); got != 21 {
		t.Fatalf("expected sectant 21, got %d", got)
	}
	// points outside the cube clamp into the boundary sectant rather than
	// escaping the valid range.
	if got := SectantAt(c, types.XYZ(-5, -5, -5)); got != 0 {
		t.Fatalf("expected clamp to sectant 0, got %d", got)
	}
	if got := SectantAt(c, types.XYZ(50, 50, 50)); got != 63 {
		t.Fatalf("expected clamp to sectant 63, got %d", got)
	}
}

func TestChildMatchesSectantAt(t *testing.T) {
	c := Cube{Origin: types.XYZ(0, 0, 0), Size: 4}
	for s := uint8(0); s < 64; s++ {
		child := c.Child(s)
		center := child.Center()
		if got := SectantAt(c, center); got != s {
			t.Fatalf("sectant %d: child center %v hashes back to %d", s, center, got)
		}
	}
}

func TestStepSectantOOBAtBoundary(t *testing.T) {
	if got := StepSectant(63, DDAStep{X: 1, Y: 0, Z: 0}); got != OOBSectant {
		t.Fatalf("expected OOB stepping +x from sectant 63, got %d", got)
	}
	if got := StepSectant(0, DDAStep{X: -1, Y: 0, Z: 0}); got != OOBSectant {
		t.Fatalf("expected OOB stepping -x from sectant 0, got %d", got)
	}
}

func TestStepSectantWithinBounds(t *testing.T) {
	// sectant 0 (x=0,y=0,z=0) stepping +x -> sectant 1 (x=1,y=0,z=0).
	if got := StepSectant(0, DDAStep{X: 1, Y: 0, Z: 0}); got != 1 {
		t.Fatalf("expected sectant 1, got %d", got)
	}
}

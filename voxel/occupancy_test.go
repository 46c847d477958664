package voxel

import "testing"

func TestSectantMaskTableIsolatesSingleBit(t *testing.T) {
	for s := 0; s < 64; s++ {
		mask := SectantMaskTable[s]
		for other := 0; other < 64; other++ {
			want := other == s
			if mask.Test(uint8(other)) != want {
				t.Fatalf("sectant mask %d: bit %d test = %v, want %v", s, other, mask.Test(uint8(other)), want)
			}
		}
	}
}

// Occupancy soundness (invariant 2): if a node's occupancy bit at a
// sectant is clear, the ray-to-sectant mask AND the occupancy word must
// never make that sectant appear reachable with a non-zero result overall
// depending on other bits, but specifically ANDing an all-clear occupancy
// word always yields zero regardless of the direction mask.
func TestZeroOccupancyAndsToZero(t *testing.T) {
	var occupancy Bitmap64
	for entry := 0; entry < 64; entry++ {
		for octant := 0; octant < 8; octant++ {
			got := RayToSectantMask[entry][octant].And(occupancy)
			if !got.IsZero() {
				t.Fatalf("entry %d octant %d: expected zero AND against empty occupancy", entry, octant)
			}
		}
	}
}

func TestRayToSectantMaskIncludesEntrySectant(t *testing.T) {
	// A ray entering sectant s can always still "reach" s itself,
	// regardless of travel direction (every axis condition is
	// satisfied trivially when coord == entryCoord).
	for entry := 0; entry < 64; entry++ {
		for octant := 0; octant < 8; octant++ {
			if !RayToSectantMask[entry][octant].Test(uint8(entry)) {
				t.Fatalf("entry %d octant %d: expected entry sectant to be reachable", entry, octant)
			}
		}
	}
}

func TestNodeMetaPackRoundTrip(t *testing.T) {
	m := NodeMeta{IsLeaf: true, IsUniform: false, HasMIP: true, MIPIsParted: true, PartedHint: 0xAB}
	got := UnpackNodeMeta(m.Pack())
	if got != m {
		t.Fatalf("round trip mismatch: want %+v, got %+v", m, got)
	}
}

func TestBrickDescriptorRoundTrip(t *testing.T) {
	solid := SolidBrick(17)
	if !solid.IsSolid() || solid.PaletteIndex() != 17 {
		t.Fatalf("solid brick round trip failed: %+v", solid)
	}

	parted := PartedBrick(9001)
	if parted.IsSolid() || parted.BrickIndex() != 9001 {
		t.Fatalf("parted brick round trip failed: %+v", parted)
	}
}

package spatial

// StepTable maps (current sectant, sign-of-step per axis in {-1,0,+1}) to
// the sectant one step away, or OOBSectant if the step exits the cube. It
// is computed once at package init and shared read-only by every ray,
// mirroring the precomputed SECTANT_STEP_RESULT_LUT referenced by
// step_sectant in the traversal this kernel is based on.
//
// Indexing: StepTable[sectant][stepX+1][stepY+1][stepZ+1].
var StepTable [64][3][3][3]uint8

func init() {
	for s := 0; s < 64; s++ {
		x := int32(s) & 3
		y := (int32(s) >> 2) & 3
		z := (int32(s) >> 4) & 3
		for sx := -1; sx <= 1; sx++ {
			for sy := -1; sy <= 1; sy++ {
				for sz := -1; sz <= 1; sz++ {
					nx, okx := stepAxis(x, sx)
					ny, oky := stepAxis(y, sy)
					nz, okz := stepAxis(z, sz)
					if !okx || !oky || !okz {
						StepTable[s][sx+1][sy+1][sz+1] = OOBSectant
						continue
					}
					StepTable[s][sx+1][sy+1][sz+1] = uint8(nx | ny<<2 | nz<<4)
				}
			}
		}
	}
}

func stepAxis(v int32, step int) (int32, bool) {
	nv := v + int32(step)
	if nv < 0 || nv > 3 {
		return 0, false
	}
	return nv, true
}

// StepSectant looks up the sectant reached by applying step to sectant s.
func StepSectant(s uint8, step DDAStep) uint8 {
	return StepTable[s][step.X+1][step.Y+1][step.Z+1]
}

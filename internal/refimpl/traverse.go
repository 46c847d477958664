package refimpl

import (
	"math"

	"github.com/achilleasa/svoxtrace/spatial"
	"github.com/achilleasa/svoxtrace/types"
	"github.com/achilleasa/svoxtrace/voxel"
)

// restartEpsilon advances the current ray point between outer iterations.
// It must be strictly positive and smaller than the smallest voxel size, or
// the outer loop could re-enter the same cube without making progress.
const restartEpsilon = 1e-4

// missingTintStep and droppedTintStep are the per-occurrence amounts folded
// into a pixel's accumulated tint for a written and a dropped mailbox
// request respectively, so a user watching the frame can see where
// streaming is behind as a faint silhouette. The exact magnitude is a
// display choice, not a correctness requirement — kept as flat
// per-occurrence increments here rather than distance-modulated.
const (
	missingTintStep = 0.15
	droppedTintStep = 0.15
)

// maxInnerIterations bounds the inner descent loop defensively. A correct
// traversal always terminates via monotonic DDA progress or stack
// exhaustion; this cap only protects the reference mirror against a
// malformed test tree looping forever.
const maxInnerIterations = 4096

// lodFrustumDepth converts a ray's travelled distance into an acceptable
// coarseness: every lodFrustumDepth world units further from the ray
// origin, one more multiple of the current node's own edge length is
// tolerated before its MIP is substituted for full descent. Tuned for the
// reference scenes' scale rather than derived from any fixed unit; a
// production renderer would likely key it off camera far-plane distance
// instead.
const lodFrustumDepth = 64.0

// Options configures traversal behaviour that is a host/runtime choice
// rather than part of the tree itself.
type Options struct {
	MIPEnabled bool
	LightDir   types.Vec3
	Background [4]float32
}

// DefaultOptions returns the options the traversal test suite assumes:
// MIPs on, a hard-coded test light, a neutral grey background.
func DefaultOptions() Options {
	return Options{
		MIPEnabled: true,
		LightDir:   types.XYZ(0.4, 1, 0.3).Normalize(),
		Background: [4]float32{0.05, 0.05, 0.05, 1},
	}
}

// Result is what Traverse returns for one ray: whether it hit anything,
// the shaded/unshaded albedo, the impact point and surface normal (zero
// value when no hit), and the tint amounts accumulated from missing-data
// and dropped-request events along the way.
type Result struct {
	Hit         bool
	Albedo      [4]float32
	ImpactPoint types.Vec3
	Normal      types.Vec3
	MissingTint float32
	DroppedTint float32
}

// frame bundles the mutable per-ray state threaded through Traverse so
// its helper methods stay short and branch-predictable, matching how the
// GPU kernel keeps this in registers rather than a heap-allocated struct.
type frame struct {
	tree    *voxel.Tree
	ray     spatial.Ray
	mailbox *voxel.RequestMailbox
	usage   *voxel.UsageBits
	opts    Options

	directionOctant uint8
	scale           types.Vec3

	missingTint float32
	droppedTint float32
}

// Traverse runs the per-ray traversal against tree: the outer restart loop
// driving root entry, and an inner descent loop pushing into children,
// advancing to siblings, popping to parents, and probing bricks/MIPs on
// leaves.
func Traverse(tree *voxel.Tree, ray spatial.Ray, mailbox *voxel.RequestMailbox, usage *voxel.UsageBits, opts Options) Result {
	f := &frame{
		tree:            tree,
		ray:             ray,
		mailbox:         mailbox,
		usage:           usage,
		opts:            opts,
		directionOctant: spatial.DirectionOctant(ray.Direction),
		scale:           spatial.DDAScaleFactors(ray.Direction),
	}

	rootCube := spatial.Cube{Origin: types.Vec3{}, Size: float32(tree.Metadata.RootSize)}
	point := ray.Origin

	for {
		inter := spatial.IntersectRay(rootCube, ray)
		if !inter.Hit {
			break
		}
		if !rootCube.Contains(point) {
			// point has not yet reached, or has left, the root
			// cube along this ray.
			if rayHasPassedCube(ray, point, rootCube) {
				break
			}
			point = ray.PointAt(inter.ImpactDistance)
			if inter.OriginInside {
				point = ray.Origin
			}
		}

		if hit, res := f.descend(rootCube, point); hit {
			return res
		}

		point = point.Add(ray.Direction.Mul(restartEpsilon))
		if !rootCube.Contains(point) {
			break
		}
	}

	return f.missResult()
}

func rayHasPassedCube(ray spatial.Ray, point types.Vec3, c spatial.Cube) bool {
	toCenter := c.Center().Sub(point)
	return toCenter.Dot(ray.Direction) < 0
}

// descend runs the inner loop starting at the root, given the point has
// already entered rootCube.
func (f *frame) descend(rootCube spatial.Cube, point types.Vec3) (bool, Result) {
	stack := newRayStack()

	nodeIndex := voxel.RootIndex
	bounds := rootCube
	entrySectant := spatial.SectantAt(bounds, point)
	targetSectant := entrySectant

	for iter := 0; iter < maxInnerIterations; iter++ {
		node := f.tree.Nodes[nodeIndex]
		f.usage.Mark(nodeIndex)

		switch {
		case node.Meta.IsLeaf:
			if hit, res := f.probeLeaf(node, bounds, targetSectant, point); hit {
				return true, res
			}

		case f.opts.MIPEnabled && f.exceedsLoD(bounds, point):
			// The node's own edge length is already coarser than the
			// ray's current distance warrants: use its MIP as a stand-in
			// for whatever is (or isn't) actually resident below it,
			// rather than pushing further for detail nobody will see.
			if node.Meta.HasMIP {
				if hit, res := f.probeMIP(node, bounds, point); hit {
					return true, res
				}
			} else {
				f.writeLoDRequest(nodeIndex)
			}

		case node.Occupancy.Test(targetSectant) && !node.HasChild(targetSectant):
			f.writeRequest(nodeIndex, targetSectant)
			if f.opts.MIPEnabled && node.Meta.HasMIP {
				if hit, res := f.probeMIP(node, bounds, point); hit {
					return true, res
				}
			}
		}

		reach := voxel.RayToSectantMask[entrySectant][f.directionOctant].And(node.Occupancy)
		backtrack := targetSectant == spatial.OOBSectant || node.Meta.IsUniform || reach.IsZero()

		if backtrack {
			childBounds := bounds
			parentIndex, parentBounds, ok := stack.pop()
			if !ok {
				return false, Result{}
			}
			childSectantInParent := spatial.SectantAt(parentBounds, childBounds.Center())
			newPoint, step := spatial.Advance(point, f.ray.Direction, childBounds, f.scale)
			point = newPoint
			nodeIndex = parentIndex
			bounds = parentBounds
			targetSectant = spatial.StepSectant(childSectantInParent, step)
			entrySectant = childSectantInParent
			continue
		}

		if !node.Meta.IsLeaf && node.Occupancy.Test(targetSectant) && node.HasChild(targetSectant) {
			stack.push(nodeIndex, bounds)
			childIndex := node.ChildNode(targetSectant)
			childBounds := bounds.Child(targetSectant)
			f.usage.Mark(childIndex)
			nodeIndex = childIndex
			bounds = childBounds
			entrySectant = spatial.SectantAt(bounds, point)
			targetSectant = entrySectant
			continue
		}

		cellBounds := bounds.Child(targetSectant)
		newPoint, step := spatial.Advance(point, f.ray.Direction, cellBounds, f.scale)
		point = newPoint
		targetSectant = spatial.StepSectant(targetSectant, step)
	}

	return false, Result{}
}

// exceedsLoD reports whether bounds is already coarser than the detail the
// ray's travelled distance actually needs at point: distance from the ray
// origin, snapped down to a grid of bounds' own edge length, divided by
// lodFrustumDepth. A zero requirement (near the origin) never counts as
// exceeded, so the first few node levels around the camera always resolve
// at full detail regardless of their size.
func (f *frame) exceedsLoD(bounds spatial.Cube, point types.Vec3) bool {
	dist := point.Sub(f.ray.Origin).Len()
	grid := float32(math.Floor(float64(dist/bounds.Size))) * bounds.Size
	required := grid / lodFrustumDepth
	return required > 0 && bounds.Size >= required
}

func (f *frame) writeLoDRequest(nodeIndex uint32) {
	ok := f.mailbox.WriteMIPRequest(nodeIndex)
	if ok {
		f.missingTint += missingTintStep
	} else {
		f.droppedTint += droppedTintStep
	}
}

func (f *frame) writeRequest(nodeIndex uint32, sectant uint8) {
	ok := f.mailbox.Write(voxel.Request{NodeIndex: nodeIndex, TargetSectant: sectant})
	if ok {
		f.missingTint += missingTintStep
	} else {
		f.droppedTint += droppedTintStep
	}
}

func (f *frame) missResult() Result {
	bg := f.opts.Background
	t := f.missingTint
	albedo := [4]float32{
		bg[0]*(1-t) + t,
		bg[1]*(1-t) + t,
		bg[2]*(1-t) + t,
		bg[3],
	}
	return Result{Hit: false, Albedo: albedo, MissingTint: f.missingTint, DroppedTint: f.droppedTint}
}

// probeLeaf probes a leaf node's brick at targetSectant (or, for a uniform
// leaf, the whole node cube using its sole descriptor).
func (f *frame) probeLeaf(node voxel.Node, bounds spatial.Cube, targetSectant uint8, point types.Vec3) (bool, Result) {
	if node.Meta.IsUniform {
		return f.probeBrickDescriptor(node.ChildBrick(0), bounds, point)
	}
	if targetSectant == spatial.OOBSectant || !node.Occupancy.Test(targetSectant) {
		return false, Result{}
	}
	childBounds := bounds.Child(targetSectant)
	return f.probeBrickDescriptor(node.ChildBrick(targetSectant), childBounds, point)
}

func (f *frame) probeMIP(node voxel.Node, bounds spatial.Cube, point types.Vec3) (bool, Result) {
	return f.probeBrickDescriptor(node.MIP, bounds, point)
}

// probeBrickDescriptor dispatches to the uniform-solid fast path or the
// parted DDA marcher.
func (f *frame) probeBrickDescriptor(desc voxel.BrickDescriptor, cube spatial.Cube, point types.Vec3) (bool, Result) {
	if desc.IsSolid() && f.tree.Palette.IsEmpty(desc.PaletteIndex()) {
		return false, Result{}
	}

	if desc.IsSolid() {
		impact := point
		normal := spatial.ImpactNormal(cube, impact)
		return true, f.shade(desc.PaletteIndex(), impact, normal)
	}

	return f.marchBrick(desc.BrickIndex(), cube, point)
}

// marchBrick runs the brick DDA: clamp to an integer cell index, test for
// a non-empty voxel, or advance to the next lattice face. Termination is
// guaranteed within 3*D steps since every iteration advances at least one
// axis by one cell.
func (f *frame) marchBrick(brickIndex uint32, cube spatial.Cube, point types.Vec3) (bool, Result) {
	d := f.tree.Bricks.Dim
	cellSize := cube.Size / float32(d)

	cur := point
	ix := clampCell(cur[0], cube.Origin[0], cellSize, d)
	iy := clampCell(cur[1], cube.Origin[1], cellSize, d)
	iz := clampCell(cur[2], cube.Origin[2], cellSize, d)

	for step := uint32(0); step < 3*d; step++ {
		if ix >= d || iy >= d || iz >= d {
			return false, Result{}
		}

		idx := f.tree.Bricks.At(brickIndex, ix, iy, iz)
		if !f.tree.Palette.IsEmpty(idx) {
			cellBounds := spatial.Cube{
				Origin: types.XYZ(
					cube.Origin[0]+float32(ix)*cellSize,
					cube.Origin[1]+float32(iy)*cellSize,
					cube.Origin[2]+float32(iz)*cellSize,
				),
				Size: cellSize,
			}
			normal := spatial.ImpactNormal(cellBounds, cur)
			return true, f.shade(idx, cur, normal)
		}

		cellBounds := spatial.Cube{
			Origin: types.XYZ(
				cube.Origin[0]+float32(ix)*cellSize,
				cube.Origin[1]+float32(iy)*cellSize,
				cube.Origin[2]+float32(iz)*cellSize,
			),
			Size: cellSize,
		}
		next, dstep := spatial.Advance(cur, f.ray.Direction, cellBounds, f.scale)
		cur = next
		ix = stepCell(ix, dstep.X)
		iy = stepCell(iy, dstep.Y)
		iz = stepCell(iz, dstep.Z)
	}
	return false, Result{}
}

func clampCell(p, origin, cellSize float32, d uint32) uint32 {
	q := int32((p - origin) / cellSize)
	switch {
	case q < 0:
		return 0
	case q >= int32(d):
		return d - 1
	default:
		return uint32(q)
	}
}

func stepCell(v uint32, step int8) uint32 {
	switch {
	case step > 0:
		return v + 1
	case step < 0:
		if v == 0 {
			return 0xFFFFFFFF // forces an out-of-range miss next iteration
		}
		return v - 1
	default:
		return v
	}
}

// shade is the core traversal's own hit-path return value: the raw
// palette colour with the missing-data tint already subtracted so
// requests do not double-count. Lambert shading is a separate, later
// concern — see Shade, the pixel driver's entry point.
func (f *frame) shade(paletteIndex uint16, impact, normal types.Vec3) Result {
	color := f.tree.Palette.Color(paletteIndex)
	t := f.missingTint
	albedo := [4]float32{
		clamp01(color[0] - t),
		clamp01(color[1] - t),
		clamp01(color[2] - t),
		color[3],
	}
	return Result{
		Hit:         true,
		Albedo:      albedo,
		ImpactPoint: impact,
		Normal:      normal,
		MissingTint: f.missingTint,
		DroppedTint: f.droppedTint,
	}
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Shade is the pixel driver's entry point: given a traversal Result and the
// light direction, multiply albedo by a Lambert factor against the
// hard-coded test light, or blend the background with the missing-data
// tint on a miss. It is kept separate from Traverse because shading is
// pixel-driver scope, not traversal scope — Traverse's own Result.Albedo
// is the raw (tint-subtracted) palette colour the rest of the pipeline
// reasons about.
func Shade(r Result, opts Options) [4]float32 {
	if !r.Hit {
		return r.Albedo
	}
	lambert := (r.Normal.Dot(opts.LightDir) + 1) / 2
	return [4]float32{
		r.Albedo[0] * lambert,
		r.Albedo[1] * lambert,
		r.Albedo[2] * lambert,
		r.Albedo[3],
	}
}

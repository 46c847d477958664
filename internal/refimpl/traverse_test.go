package refimpl

import (
	"testing"

	"github.com/achilleasa/svoxtrace/spatial"
	"github.com/achilleasa/svoxtrace/types"
	"github.com/achilleasa/svoxtrace/voxel"
)

func approxEq(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func vecApproxEq(a, b types.Vec3, eps float32) bool {
	return approxEq(a[0], b[0], eps) && approxEq(a[1], b[1], eps) && approxEq(a[2], b[2], eps)
}

func isAxisUnitVector(n types.Vec3) bool {
	nonZero := 0
	for i := 0; i < 3; i++ {
		if approxEq(n[i], 1, 1e-3) || approxEq(n[i], -1, 1e-3) {
			nonZero++
		} else if !approxEq(n[i], 0, 1e-3) {
			return false
		}
	}
	return nonZero == 1
}

func emptyPalette() voxel.Palette {
	return voxel.Palette{Entries: [][4]float32{
		{0, 0, 0, 0},
	}}
}

// A single solid brick filling the whole root: the simplest possible hit.
func TestUniformLeafHit(t *testing.T) {
	tree := &voxel.Tree{
		Metadata: voxel.NewTreeMetadata(4, 4, true),
		Nodes: voxel.Table{
			{
				Meta:     voxel.NodeMeta{IsLeaf: true, IsUniform: true},
				Children: filledChildren(voxel.SolidBrick(1)),
			},
		},
		Palette: voxel.Palette{Entries: [][4]float32{
			{0, 0, 0, 0},
			{1, 0, 0, 1},
		}},
	}

	ray := spatial.NewRay(types.XYZ(-1, 2, 2), types.XYZ(1, 0, 0))
	mailbox := voxel.NewRequestMailbox(4)
	usage := voxel.NewUsageBits(len(tree.Nodes))

	res := Traverse(tree, ray, mailbox, usage, DefaultOptions())
	if !res.Hit {
		t.Fatalf("expected hit")
	}
	if res.Albedo != [4]float32{1, 0, 0, 1} {
		t.Fatalf("expected albedo (1,0,0,1), got %v", res.Albedo)
	}
	if !vecApproxEq(res.ImpactPoint, types.XYZ(0, 2, 2), 1e-3) {
		t.Fatalf("expected impact point (0,2,2), got %v", res.ImpactPoint)
	}
	if !vecApproxEq(res.Normal, types.XYZ(-1, 0, 0), 1e-3) {
		t.Fatalf("expected normal (-1,0,0), got %v", res.Normal)
	}
}

// A ray that never enters the occupied volume at all.
func TestMiss(t *testing.T) {
	tree := &voxel.Tree{
		Metadata: voxel.NewTreeMetadata(4, 4, true),
		Nodes: voxel.Table{
			{
				Meta:     voxel.NodeMeta{IsLeaf: true, IsUniform: true},
				Children: filledChildren(voxel.SolidBrick(1)),
			},
		},
		Palette: voxel.Palette{Entries: [][4]float32{
			{0, 0, 0, 0},
			{1, 0, 0, 1},
		}},
	}

	ray := spatial.NewRay(types.XYZ(-1, -1, 2), types.XYZ(1, 0, 0))
	mailbox := voxel.NewRequestMailbox(4)
	usage := voxel.NewUsageBits(len(tree.Nodes))

	res := Traverse(tree, ray, mailbox, usage, DefaultOptions())
	if res.Hit {
		t.Fatalf("expected miss, got %+v", res)
	}
	if res.MissingTint != 0 {
		t.Fatalf("expected zero missing tint on a plain miss, got %f", res.MissingTint)
	}
}

// A parted leaf with a single non-empty voxel, exercising the brick DDA
// marcher rather than the uniform fast path.
func TestPartedBrickSingleVoxel(t *testing.T) {
	const greenIdx = 1
	bricks := voxel.BrickStore{Dim: 4, Voxels: make([]uint16, 64)}
	for i := range bricks.Voxels {
		bricks.Voxels[i] = voxel.EmptyPaletteIndex
	}
	bricks.Voxels[bricks.Offset(0, 2, 1, 0)] = greenIdx

	children := filledChildren(voxel.SolidBrick(voxel.EmptyPaletteIndex))
	children[6] = uint32(voxel.PartedBrick(0))

	var occupancy voxel.Bitmap64
	occupancy.Set(6)

	tree := &voxel.Tree{
		Metadata: voxel.NewTreeMetadata(4, 4, true),
		Nodes: voxel.Table{
			{
				Meta:      voxel.NodeMeta{IsLeaf: true, IsUniform: false},
				Occupancy: occupancy,
				Children:  children,
			},
		},
		Bricks: bricks,
		Palette: voxel.Palette{Entries: [][4]float32{
			{0, 0, 0, 0},
			{0, 1, 0, 1},
		}},
	}

	ray := spatial.NewRay(types.XYZ(2.625, 1.375, -1), types.XYZ(0, 0, 1))
	mailbox := voxel.NewRequestMailbox(4)
	usage := voxel.NewUsageBits(len(tree.Nodes))

	res := Traverse(tree, ray, mailbox, usage, DefaultOptions())
	if !res.Hit {
		t.Fatalf("expected hit")
	}
	if res.Albedo != [4]float32{0, 1, 0, 1} {
		t.Fatalf("expected albedo (0,1,0,1), got %v", res.Albedo)
	}
	if !vecApproxEq(res.ImpactPoint, types.XYZ(2.625, 1.375, 0), 1e-3) {
		t.Fatalf("expected impact point (2.625,1.375,0), got %v", res.ImpactPoint)
	}
	if !vecApproxEq(res.Normal, types.XYZ(0, 0, -1), 1e-3) {
		t.Fatalf("expected normal (0,0,-1), got %v", res.Normal)
	}
}

// An internal node with only one occupied sectant; the ray must step
// across unoccupied sectants, descend, and hit the occupied child.
func TestInternalNodeOccludedSectant(t *testing.T) {
	var rootOccupancy voxel.Bitmap64
	rootOccupancy.Set(21)

	rootChildren := filledAbsent()
	rootChildren[21] = 1

	tree := &voxel.Tree{
		Metadata: voxel.NewTreeMetadata(4, 4, true),
		Nodes: voxel.Table{
			{
				Meta:      voxel.NodeMeta{IsLeaf: false},
				Occupancy: rootOccupancy,
				Children:  rootChildren,
			},
			{
				Meta:     voxel.NodeMeta{IsLeaf: true, IsUniform: true},
				Children: filledChildren(voxel.SolidBrick(1)),
			},
		},
		Palette: voxel.Palette{Entries: [][4]float32{
			{0, 0, 0, 0},
			{0, 0, 1, 1},
		}},
	}

	ray := spatial.NewRay(types.XYZ(-0.5, -0.5, -0.5), types.XYZ(1, 1, 0.9))
	mailbox := voxel.NewRequestMailbox(4)
	usage := voxel.NewUsageBits(len(tree.Nodes))

	res := Traverse(tree, ray, mailbox, usage, DefaultOptions())
	if !res.Hit {
		t.Fatalf("expected hit")
	}
	if res.Albedo != [4]float32{0, 0, 1, 1} {
		t.Fatalf("expected albedo (0,0,1,1), got %v", res.Albedo)
	}
	if !isAxisUnitVector(res.Normal) {
		t.Fatalf("expected an axis-aligned unit normal, got %v", res.Normal)
	}
	if !vecApproxEq(res.Normal, types.XYZ(0, 0, -1), 1e-2) {
		t.Fatalf("expected the ray to enter the occupied child through its z-face, got normal %v", res.Normal)
	}
}

// A missing child substituted by a MIP probe, with a request recorded for
// the real subtree.
func TestMissingChildWithMIP(t *testing.T) {
	const yellowIdx = 1
	mipBricks := voxel.BrickStore{Dim: 4, Voxels: make([]uint16, 64)}
	for i := range mipBricks.Voxels {
		mipBricks.Voxels[i] = voxel.EmptyPaletteIndex
	}
	mipBricks.Voxels[mipBricks.Offset(0, 2, 2, 2)] = yellowIdx

	var occupancy voxel.Bitmap64
	occupancy.Set(10)

	tree := &voxel.Tree{
		Metadata: voxel.NewTreeMetadata(4, 4, true),
		Nodes: voxel.Table{
			{
				Meta:      voxel.NodeMeta{IsLeaf: false, HasMIP: true},
				Occupancy: occupancy,
				Children:  filledAbsent(),
				MIP:       voxel.PartedBrick(0),
			},
		},
		Bricks: mipBricks,
		Palette: voxel.Palette{Entries: [][4]float32{
			{0, 0, 0, 0},
			{1, 1, 0, 1},
		}},
	}

	ray := spatial.NewRay(types.XYZ(2.5, 2.5, -1), types.XYZ(0, 0, 1))
	mailbox := voxel.NewRequestMailbox(4)
	usage := voxel.NewUsageBits(len(tree.Nodes))

	res := Traverse(tree, ray, mailbox, usage, DefaultOptions())
	if !res.Hit {
		t.Fatalf("expected MIP hit")
	}
	if res.MissingTint <= 0 {
		t.Fatalf("expected non-zero missing tint from the recorded request")
	}

	entries := mailbox.Entries()
	if len(entries) != 1 || entries[0] != (voxel.Request{NodeIndex: 0, TargetSectant: 10}) {
		t.Fatalf("expected exactly one request (0,10), got %v", entries)
	}

	if res.Albedo[2] != 0 {
		t.Fatalf("expected zero blue channel unaffected by tint, got %v", res.Albedo)
	}
	if res.Albedo[0] >= 1 || res.Albedo[1] >= 1 {
		t.Fatalf("expected R/G channels reduced by the missing-data tint, got %v", res.Albedo)
	}
}

// Request saturation: a single ray crossing more missing sectants than the
// mailbox has slots for.
func TestRequestSaturation(t *testing.T) {
	var occupancy voxel.Bitmap64
	occupancy.Set(0)
	occupancy.Set(1)
	occupancy.Set(2)
	occupancy.Set(3)

	tree := &voxel.Tree{
		Metadata: voxel.NewTreeMetadata(4, 4, false),
		Nodes: voxel.Table{
			{
				Meta:      voxel.NodeMeta{IsLeaf: false},
				Occupancy: occupancy,
				Children:  filledAbsent(),
			},
		},
		Palette: emptyPalette(),
	}

	ray := spatial.NewRay(types.XYZ(-1, 0.5, 0.5), types.XYZ(1, 0, 0))
	const mailboxLen = 3
	mailbox := voxel.NewRequestMailbox(mailboxLen)
	usage := voxel.NewUsageBits(len(tree.Nodes))

	res := Traverse(tree, ray, mailbox, usage, DefaultOptions())
	if res.Hit {
		t.Fatalf("expected no hit, the row is entirely missing data")
	}
	if res.DroppedTint <= 0 {
		t.Fatalf("expected a non-zero dropped-request tint")
	}
	if got := len(mailbox.Entries()); got != mailboxLen {
		t.Fatalf("expected exactly %d distinct entries, got %d", mailboxLen, got)
	}
}

// A distant, fully resident child that is still substituted by its
// parent's MIP because the ray has travelled far enough that full
// resolution is no longer owed to it. Unlike the missing-child MIP probe
// above, this child is present (occupancy set, a real node index
// installed) — the substitution is triggered purely by distance, and must
// not accumulate any missing-data tint or mailbox request, since nothing
// is actually absent.
func TestLoDSubstitutesDistantResidentChild(t *testing.T) {
	const whiteIdx = 1
	mipBricks := voxel.BrickStore{Dim: 4, Voxels: make([]uint16, 64)}
	for i := range mipBricks.Voxels {
		mipBricks.Voxels[i] = voxel.EmptyPaletteIndex
	}
	mipBricks.Voxels[mipBricks.Offset(0, 0, 2, 2)] = whiteIdx

	var childOccupancy voxel.Bitmap64
	childOccupancy.Set(40)
	childChildren := filledAbsent()
	childChildren[40] = 2

	var rootOccupancy voxel.Bitmap64
	rootOccupancy.Set(0)
	rootChildren := filledAbsent()
	rootChildren[0] = 1

	tree := &voxel.Tree{
		Metadata: voxel.NewTreeMetadata(4, 4, true),
		Nodes: voxel.Table{
			{
				Meta:      voxel.NodeMeta{IsLeaf: false},
				Occupancy: rootOccupancy,
				Children:  rootChildren,
			},
			{
				Meta:      voxel.NodeMeta{IsLeaf: false, HasMIP: true},
				Occupancy: childOccupancy,
				Children:  childChildren,
				MIP:       voxel.PartedBrick(0),
			},
			{
				Meta:     voxel.NodeMeta{IsLeaf: true, IsUniform: true},
				Children: filledChildren(voxel.SolidBrick(whiteIdx)),
			},
		},
		Bricks: mipBricks,
		Palette: voxel.Palette{Entries: [][4]float32{
			{0, 0, 0, 0},
			{1, 1, 1, 1},
		}},
	}

	// Ray origin is far enough from the root that, by the time it reaches
	// the depth-1 child's cube, the distance already exceeds that cube's
	// own edge length — the condition exceedsLoD checks for.
	ray := spatial.NewRay(types.XYZ(-2, 0.5, 0.5), types.XYZ(1, 0, 0))
	mailbox := voxel.NewRequestMailbox(4)
	usage := voxel.NewUsageBits(len(tree.Nodes))

	res := Traverse(tree, ray, mailbox, usage, DefaultOptions())
	if !res.Hit {
		t.Fatalf("expected a MIP hit from LoD substitution")
	}
	if res.Albedo != [4]float32{1, 1, 1, 1} {
		t.Fatalf("expected albedo (1,1,1,1), got %v", res.Albedo)
	}
	if res.MissingTint != 0 {
		t.Fatalf("expected zero missing tint, nothing was actually absent, got %f", res.MissingTint)
	}
	if got := len(mailbox.Entries()); got != 0 {
		t.Fatalf("expected no mailbox requests for a resident child, got %d", got)
	}
}

func filledChildren(desc voxel.BrickDescriptor) [64]uint32 {
	var c [64]uint32
	for i := range c {
		c[i] = uint32(desc)
	}
	return c
}

func filledAbsent() [64]uint32 {
	var c [64]uint32
	for i := range c {
		c[i] = voxel.AbsentIndex
	}
	return c
}

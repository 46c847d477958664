package voxel

const (
	propsDimMask    = 0xFFFF
	propsMIPEnabled = 1 << 16
)

// TreeMetadata is the tree-level metadata input buffer: root edge length
// (a power of four), brick linear dimension D, and feature flags, plus
// the ambient light colour/position this renderer's pixel driver folds
// into its Lambert shading as a secondary fill term.
type TreeMetadata struct {
	AmbientColor    [3]float32
	AmbientPosition [3]float32
	RootSize        uint32
	properties      uint32
}

// NewTreeMetadata builds metadata for a tree with the given root edge
// length and brick dimension, MIPs enabled or not.
func NewTreeMetadata(rootSize, brickDim uint32, mipEnabled bool) TreeMetadata {
	m := TreeMetadata{RootSize: rootSize}
	m.properties = brickDim & propsDimMask
	if mipEnabled {
		m.properties |= propsMIPEnabled
	}
	return m
}

// BrickDim returns the brick linear dimension D.
func (m TreeMetadata) BrickDim() uint32 {
	return m.properties & propsDimMask
}

// MIPEnabled reports whether MIP substitution is active for this tree.
func (m TreeMetadata) MIPEnabled() bool {
	return m.properties&propsMIPEnabled != 0
}

// Properties returns the packed properties word as uploaded to the GPU.
func (m TreeMetadata) Properties() uint32 {
	return m.properties
}

// Tree is the complete host-side sparse voxel tree: everything the GPU
// kernel's input buffers are built from, addressable and inspectable
// from Go without a device. It owns no GPU resources; package
// tracer/opencl uploads its arrays into device buffers verbatim.
type Tree struct {
	Metadata TreeMetadata
	Nodes    Table
	Bricks   BrickStore
	Palette  Palette
}

// RootIndex is always 0 and always resident (invariant 1).
const RootIndex uint32 = 0

// Root returns the tree's root node.
func (t Tree) Root() Node {
	return t.Nodes[RootIndex]
}

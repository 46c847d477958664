package opencl

import "github.com/achilleasa/svoxtrace/voxel"

// packedTree holds a voxel.Tree flattened into the parallel arrays the GPU
// input buffers expect. The node table is already array-of-struct on the
// host (voxel.Table), so packing means splitting it into one slice per
// GPU buffer rather than repacking individual elements.
type packedTree struct {
	nodeMeta  []uint32
	occupancy []uint32
	children  []uint32
	mip       []uint32
	voxels    []uint16
	palette   []float32
}

// packTree flattens t's node table and palette into upload-ready slices.
// t.Bricks.Voxels is already a flat array and is uploaded as-is.
func packTree(t *voxel.Tree) packedTree {
	n := len(t.Nodes)
	p := packedTree{
		nodeMeta:  make([]uint32, n),
		occupancy: make([]uint32, 2*n),
		children:  make([]uint32, 64*n),
		mip:       make([]uint32, n),
		voxels:    t.Bricks.Voxels,
		palette:   make([]float32, 4*len(t.Palette.Entries)),
	}

	for i, node := range t.Nodes {
		p.nodeMeta[i] = node.Meta.Pack()
		p.occupancy[2*i] = node.Occupancy.Lo
		p.occupancy[2*i+1] = node.Occupancy.Hi
		copy(p.children[64*i:64*i+64], node.Children[:])
		p.mip[i] = uint32(node.MIP)
	}

	for i, c := range t.Palette.Entries {
		copy(p.palette[4*i:4*i+4], c[:])
	}

	return p
}

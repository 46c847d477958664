package voxel

// EmptyPaletteIndex is the reserved palette index meaning "no voxel
// here". A voxel also counts as empty if its palette entry's RGBA
// channels are all zero, so a fully transparent colour is equivalent to
// the sentinel index without needing to special-case it at lookup time.
const EmptyPaletteIndex uint16 = 0xFFFF

// BrickStore is the flat array of D^3 palette-index voxels shared by every
// parted brick and MIP brick in the tree. Index i within a brick starting
// at offset B is stored at B*D^3 + x + D*y + D^2*z.
type BrickStore struct {
	Dim    uint32
	Voxels []uint16
}

// Offset returns the flat index of cell (x,y,z) within the brick starting
// at brickIndex.
func (s BrickStore) Offset(brickIndex uint32, x, y, z uint32) uint32 {
	d := s.Dim
	return brickIndex*d*d*d + x + d*y + d*d*z
}

// At returns the palette index stored at cell (x,y,z) of the brick at
// brickIndex.
func (s BrickStore) At(brickIndex uint32, x, y, z uint32) uint16 {
	return s.Voxels[s.Offset(brickIndex, x, y, z)]
}

// Palette is an indexed table of RGBA colours, looked up by the low 16
// bits of a stored voxel value.
type Palette struct {
	// Entries are RGBA channels in [0,1], four float32s per entry.
	Entries [][4]float32
}

// Color returns the RGBA colour for palette index idx.
func (p Palette) Color(idx uint16) [4]float32 {
	return p.Entries[idx]
}

// IsEmpty reports whether idx denotes an empty voxel: the reserved
// sentinel index, or a palette entry whose four channels are all zero.
func (p Palette) IsEmpty(idx uint16) bool {
	if idx == EmptyPaletteIndex {
		return true
	}
	if int(idx) >= len(p.Entries) {
		return true
	}
	c := p.Entries[idx]
	return c[0] == 0 && c[1] == 0 && c[2] == 0 && c[3] == 0
}

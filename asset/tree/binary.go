// Package tree persists a voxel.Tree to and from a zip-compressed binary
// container: one entry per flat array, matching the layout the GPU input
// buffers expect. Entries are encoded with encoding/binary rather than
// encoding/gob, because tracer/opencl uploads these bytes directly into
// device buffers and needs a flat, decoder-free layout rather than a
// gob-decodable struct graph.
package tree

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/achilleasa/svoxtrace/asset"
	"github.com/achilleasa/svoxtrace/log"
	"github.com/achilleasa/svoxtrace/voxel"
)

const (
	metaFile      = "meta.bin"
	nodeMetaFile  = "nodeMeta.bin"
	occupancyFile = "occupancy.bin"
	childrenFile  = "children.bin"
	mipFile       = "mip.bin"
	voxelFile     = "voxels.bin"
	paletteFile   = "palette.bin"
)

var byteOrder = binary.LittleEndian

var treeLogger = log.New("asset/tree")

// Write encodes t as a zip archive at path, one entry per array.
func Write(t *voxel.Tree, path string) error {
	start := time.Now()
	treeLogger.Infof("writing tree to %s", path)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	if err := writeMeta(zw, t); err != nil {
		return err
	}
	if err := writeNodes(zw, t.Nodes); err != nil {
		return err
	}
	if err := writeBricks(zw, t.Bricks); err != nil {
		return err
	}
	if err := writePalette(zw, t.Palette); err != nil {
		return err
	}

	treeLogger.Infof("wrote tree in %s", time.Since(start))
	return nil
}

func writeMeta(zw *zip.Writer, t *voxel.Tree) error {
	w, err := zw.Create(metaFile)
	if err != nil {
		return err
	}
	m := t.Metadata
	fields := []float32{m.AmbientColor[0], m.AmbientColor[1], m.AmbientColor[2],
		m.AmbientPosition[0], m.AmbientPosition[1], m.AmbientPosition[2]}
	for _, v := range fields {
		if err := binary.Write(w, byteOrder, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, byteOrder, m.RootSize); err != nil {
		return err
	}
	return binary.Write(w, byteOrder, m.Properties())
}

func writeNodes(zw *zip.Writer, nodes voxel.Table) error {
	metaW, err := zw.Create(nodeMetaFile)
	if err != nil {
		return err
	}
	occW, err := zw.Create(occupancyFile)
	if err != nil {
		return err
	}
	childW, err := zw.Create(childrenFile)
	if err != nil {
		return err
	}
	mipW, err := zw.Create(mipFile)
	if err != nil {
		return err
	}

	for _, n := range nodes {
		if err := binary.Write(metaW, byteOrder, n.Meta.Pack()); err != nil {
			return err
		}
		if err := binary.Write(occW, byteOrder, n.Occupancy.Lo); err != nil {
			return err
		}
		if err := binary.Write(occW, byteOrder, n.Occupancy.Hi); err != nil {
			return err
		}
		if err := binary.Write(childW, byteOrder, n.Children); err != nil {
			return err
		}
		if err := binary.Write(mipW, byteOrder, uint32(n.MIP)); err != nil {
			return err
		}
	}
	return nil
}

func writeBricks(zw *zip.Writer, b voxel.BrickStore) error {
	w, err := zw.Create(voxelFile)
	if err != nil {
		return err
	}
	if err := binary.Write(w, byteOrder, b.Dim); err != nil {
		return err
	}
	if err := binary.Write(w, byteOrder, uint32(len(b.Voxels))); err != nil {
		return err
	}
	return binary.Write(w, byteOrder, b.Voxels)
}

func writePalette(zw *zip.Writer, p voxel.Palette) error {
	w, err := zw.Create(paletteFile)
	if err != nil {
		return err
	}
	if err := binary.Write(w, byteOrder, uint32(len(p.Entries))); err != nil {
		return err
	}
	for _, c := range p.Entries {
		if err := binary.Write(w, byteOrder, c); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a tree previously written by Write from a local path.
func Read(path string) (*voxel.Tree, error) {
	start := time.Now()
	treeLogger.Infof("reading tree from %s", path)

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	t, err := readZipEntries(zr.File)
	if err != nil {
		return nil, err
	}

	treeLogger.Infof("read tree in %s", time.Since(start))
	return t, nil
}

// ReadResource decodes a tree from a local path or an http(s) URL,
// wrapping pathOrURL in an asset.Resource so render/inspect commands can
// be pointed at a tree served by a cache node without a separate download
// step. A local path takes the same zip.OpenReader fast path as Read; a
// remote one is buffered in full first, since the zip format needs
// random-access reads that an HTTP body can't provide directly.
func ReadResource(pathOrURL string) (*voxel.Tree, error) {
	res, err := asset.NewResource(pathOrURL, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	if !res.IsRemote() {
		return Read(pathOrURL)
	}

	start := time.Now()
	treeLogger.Infof("reading tree from %s", res.Path())

	buf, err := io.ReadAll(res)
	if err != nil {
		return nil, fmt.Errorf("asset/tree: failed to fetch %s: %w", res.Path(), err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, err
	}

	t, err := readZipEntries(zr.File)
	if err != nil {
		return nil, err
	}

	treeLogger.Infof("read tree in %s", time.Since(start))
	return t, nil
}

func readZipEntries(files []*zip.File) (*voxel.Tree, error) {
	t := &voxel.Tree{}
	var nodeMeta []uint32
	var occWords []uint32
	var childWords [][64]uint32
	var mipWords []uint32

	for _, f := range files {
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		br := bufio.NewReader(r)

		switch f.Name {
		case metaFile:
			err = readMeta(br, t)
		case nodeMetaFile:
			nodeMeta, err = readUint32Slice(br, int(f.UncompressedSize64/4))
		case occupancyFile:
			occWords, err = readUint32Slice(br, int(f.UncompressedSize64/4))
		case childrenFile:
			childWords, err = readChildrenSlice(br, int(f.UncompressedSize64/(64*4)))
		case mipFile:
			mipWords, err = readUint32Slice(br, int(f.UncompressedSize64/4))
		case voxelFile:
			err = readBricks(br, t)
		case paletteFile:
			err = readPalette(br, t)
		default:
			treeLogger.Warningf("unknown entry %q in tree archive; skipping", f.Name)
		}

		r.Close()
		if err != nil {
			return nil, fmt.Errorf("asset/tree: failed to load %s: %w", f.Name, err)
		}
	}

	if err := assembleNodes(t, nodeMeta, occWords, childWords, mipWords); err != nil {
		return nil, err
	}
	return t, nil
}

func readMeta(r io.Reader, t *voxel.Tree) error {
	var fields [6]float32
	for i := range fields {
		if err := binary.Read(r, byteOrder, &fields[i]); err != nil {
			return err
		}
	}
	var rootSize, properties uint32
	if err := binary.Read(r, byteOrder, &rootSize); err != nil {
		return err
	}
	if err := binary.Read(r, byteOrder, &properties); err != nil {
		return err
	}

	t.Metadata = voxel.NewTreeMetadata(rootSize, properties&0xFFFF, properties&(1<<16) != 0)
	t.Metadata.AmbientColor = [3]float32{fields[0], fields[1], fields[2]}
	t.Metadata.AmbientPosition = [3]float32{fields[3], fields[4], fields[5]}
	return nil
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		if err := binary.Read(r, byteOrder, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readChildrenSlice(r io.Reader, n int) ([][64]uint32, error) {
	out := make([][64]uint32, n)
	for i := range out {
		if err := binary.Read(r, byteOrder, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readBricks(r io.Reader, t *voxel.Tree) error {
	var dim, count uint32
	if err := binary.Read(r, byteOrder, &dim); err != nil {
		return err
	}
	if err := binary.Read(r, byteOrder, &count); err != nil {
		return err
	}
	voxels := make([]uint16, count)
	if err := binary.Read(r, byteOrder, voxels); err != nil {
		return err
	}
	t.Bricks = voxel.BrickStore{Dim: dim, Voxels: voxels}
	return nil
}

func readPalette(r io.Reader, t *voxel.Tree) error {
	var count uint32
	if err := binary.Read(r, byteOrder, &count); err != nil {
		return err
	}
	entries := make([][4]float32, count)
	for i := range entries {
		if err := binary.Read(r, byteOrder, &entries[i]); err != nil {
			return err
		}
	}
	t.Palette = voxel.Palette{Entries: entries}
	return nil
}

func assembleNodes(t *voxel.Tree, nodeMeta, occWords []uint32, children [][64]uint32, mip []uint32) error {
	n := len(nodeMeta)
	if len(occWords) != 2*n || len(children) != n || len(mip) != n {
		return fmt.Errorf("asset/tree: inconsistent array lengths across node entries")
	}

	nodes := make(voxel.Table, n)
	for i := 0; i < n; i++ {
		nodes[i] = voxel.Node{
			Meta:      voxel.UnpackNodeMeta(nodeMeta[i]),
			Occupancy: voxel.Bitmap64{Lo: occWords[2*i], Hi: occWords[2*i+1]},
			Children:  children[i],
			MIP:       voxel.BrickDescriptor(mip[i]),
		}
	}
	t.Nodes = nodes
	return nil
}

package opencl

import (
	"reflect"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/svoxtrace/tracer/opencl/device"
	"github.com/achilleasa/svoxtrace/voxel"
)

// Size of buffer elements in bytes.
const (
	sizeofNodeMeta  = 4
	sizeofOccupancy = 4 // one word; the occupancy buffer holds 2 per node
	sizeofChild     = 4 // one word; the children buffer holds 64 per node
	sizeofMIP       = 4
	sizeofVoxel     = 2 // uint16 palette index
	sizeofPalette   = 16 // 4 x float32
	sizeofUsageWord = 4
	sizeofRequest   = 4
	sizeofPixel     = 4 // RGBA8
)

// bufferSet holds the device buffers backing the tree's GPU input arrays
// plus the output image: no scene graph, ray queues or accumulator here,
// just the flat tree arrays and the two atomic feedback buffers.
type bufferSet struct {
	// Tree node table, split one buffer per field.
	NodeMeta  *device.Buffer
	Occupancy *device.Buffer
	Children  *device.Buffer
	MIP       *device.Buffer

	// Brick store and palette.
	Voxels  *device.Buffer
	Palette *device.Buffer

	// Atomic feedback buffers.
	UsageBits      *device.Buffer
	RequestMailbox *device.Buffer

	// Output image.
	FrameBuffer *device.Buffer
}

// Allocate a new, empty buffer set bound to dev.
func newBufferSet(dev *device.Device) *bufferSet {
	return &bufferSet{
		NodeMeta:       dev.Buffer("nodeMeta"),
		Occupancy:      dev.Buffer("occupancy"),
		Children:       dev.Buffer("children"),
		MIP:            dev.Buffer("mip"),
		Voxels:         dev.Buffer("voxels"),
		Palette:        dev.Buffer("palette"),
		UsageBits:      dev.Buffer("usageBits"),
		RequestMailbox: dev.Buffer("requestMailbox"),
		FrameBuffer:    dev.Buffer("frameBuffer"),
	}
}

// Release all buffers.
func (bs *bufferSet) Release() {
	reflVal := reflect.ValueOf(*bs)
	for fieldIndex := 0; fieldIndex < reflVal.NumField(); fieldIndex++ {
		if buf, ok := reflVal.Field(fieldIndex).Interface().(*device.Buffer); ok && buf != nil {
			buf.Release()
		}
	}
}

// ResizeFrame (re)allocates the output image buffer for the given frame
// dimensions.
func (bs *bufferSet) ResizeFrame(frameW, frameH uint32) error {
	return bs.FrameBuffer.Allocate(int(frameW*frameH*sizeofPixel), cl.MEM_WRITE_ONLY)
}

// UploadTree flattens t and uploads every array to its device buffer,
// sizing the atomic feedback buffers to match the tree's node count and a
// fixed mailbox length. The mailbox only needs to be bounded, not sized
// to any particular request volume; a fixed length keeps allocation
// simple and any excess requests are just dropped and retried next frame.
func (bs *bufferSet) UploadTree(t *voxel.Tree, mailboxLen int) error {
	packed := packTree(t)

	targets := map[*device.Buffer]interface{}{
		bs.NodeMeta:  packed.nodeMeta,
		bs.Occupancy: packed.occupancy,
		bs.Children:  packed.children,
		bs.MIP:       packed.mip,
		bs.Voxels:    packed.voxels,
		bs.Palette:   packed.palette,
	}
	for buf, data := range targets {
		if err := buf.AllocateAndWriteData(data, cl.MEM_READ_ONLY); err != nil {
			return err
		}
	}

	numNodes := len(t.Nodes)
	usageWords := (numNodes + 31) / 32
	if err := bs.UsageBits.Allocate(usageWords*sizeofUsageWord, cl.MEM_READ_WRITE); err != nil {
		return err
	}

	mailbox := make([]uint32, mailboxLen)
	for i := range mailbox {
		mailbox[i] = voxel.MailboxEmpty
	}
	return bs.RequestMailbox.AllocateAndWriteData(mailbox, cl.MEM_READ_WRITE)
}

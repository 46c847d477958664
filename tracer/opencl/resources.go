package opencl

import (
	"fmt"
	"time"

	"github.com/achilleasa/svoxtrace/tracer"
	"github.com/achilleasa/svoxtrace/tracer/opencl/device"
	"github.com/achilleasa/svoxtrace/types"
)

const (
	relativePathToMainKernel = "CL/main.cl"

	// Local workgroup dimensions for the traverse kernel: pixels are
	// dispatched in 8x8 tiles.
	localWorkSizeX = 8
	localWorkSizeY = 8
)

// A container that stores handles to open CL kernels and any allocated
// device buffers.
type deviceResources struct {
	buffers *bufferSet
	kernels []*device.Kernel
}

// Using the supplied device as a target, load and compile all defined
// kernels and allocate the frame-sized output buffer.
func newDeviceResources(frameW, frameH uint32, dev *device.Device) (*deviceResources, error) {
	var err error

	if dev == nil {
		return nil, fmt.Errorf("device_resources: invalid device handle")
	}

	dr := &deviceResources{buffers: newBufferSet(dev)}
	if err = dr.buffers.ResizeFrame(frameW, frameH); err != nil {
		dr.Close()
		return nil, err
	}

	dr.kernels = make([]*device.Kernel, numKernels)
	var kType kernelType
	for kType = 0; kType < numKernels; kType++ {
		dr.kernels[kType], err = dev.Kernel(kType.String())
		if err != nil {
			dr.Close()
			return nil, err
		}
	}

	return dr, nil
}

// Release all allocated resources.
func (dr *deviceResources) Close() {
	if dr.buffers != nil {
		dr.buffers.Release()
		dr.buffers = nil
	}

	if dr.kernels != nil {
		for _, kernel := range dr.kernels {
			if kernel != nil {
				kernel.Release()
			}
		}
		dr.kernels = nil
	}
}

// ClearMailbox resets every request mailbox slot back to the empty
// sentinel ahead of each dispatch, so a slot left over from the previous
// frame can't be mistaken for a fresh request.
func (dr *deviceResources) ClearMailbox(mailboxLen int) (time.Duration, error) {
	kernel := dr.kernels[clearMailbox]

	err := kernel.SetArgs(dr.buffers.RequestMailbox)
	if err != nil {
		return 0, err
	}
	return kernel.Exec1D(0, mailboxLen, 0)
}

// ClearUsageBits zeroes the node usage bitmap ahead of an eviction pass.
// The host decides when to call this; an eviction cadence slower than
// every frame lets a node accumulate enough usage signal to be worth
// reading.
func (dr *deviceResources) ClearUsageBits(numNodes int) (time.Duration, error) {
	kernel := dr.kernels[clearUsageBits]

	usageWords := (numNodes + 31) / 32
	err := kernel.SetArgs(dr.buffers.UsageBits)
	if err != nil {
		return 0, err
	}
	return kernel.Exec1D(0, usageWords, 0)
}

// Viewport is the per-frame camera input.
type Viewport struct {
	Origin    types.Vec3
	Direction types.Vec3
	Frustum   types.Vec3
	Fov       float32
}

// MetaArgs is the per-frame tree metadata input, passed as scalar kernel
// args rather than a buffer: a handful of words read once per dispatch
// does not warrant a device allocation.
type MetaArgs struct {
	AmbientColor    types.Vec3
	AmbientPosition types.Vec3
	RootSize        uint32
	Properties      uint32
}

// Traverse dispatches the main per-pixel kernel over blockReq's rows:
// generate the primary ray, walk the tree, shade the result and write it
// to the output image.
func (dr *deviceResources) Traverse(blockReq *tracer.BlockRequest, vp Viewport, meta MetaArgs, mailboxLen int) (time.Duration, error) {
	kernel := dr.kernels[traverse]

	err := kernel.SetArgs(
		dr.buffers.FrameBuffer,
		dr.buffers.NodeMeta,
		dr.buffers.Occupancy,
		dr.buffers.Children,
		dr.buffers.MIP,
		dr.buffers.Voxels,
		dr.buffers.Palette,
		dr.buffers.UsageBits,
		dr.buffers.RequestMailbox,
		uint32(mailboxLen),
		vp.Origin,
		vp.Direction,
		vp.Frustum,
		vp.Fov,
		meta.AmbientColor,
		meta.AmbientPosition,
		meta.RootSize,
		meta.Properties,
		blockReq.FrameW,
		blockReq.FrameH,
		blockReq.BlockY,
	)
	if err != nil {
		return 0, err
	}

	return kernel.Exec2D(0, int(blockReq.BlockY), int(blockReq.FrameW), int(blockReq.BlockH), localWorkSizeX, localWorkSizeY)
}

// Package tracer defines the device-agnostic contract a dispatch backend
// (currently only tracer/opencl) must satisfy: accept tree and viewport
// updates, render horizontal blocks of the output image on request, and
// report enough statistics for a BlockScheduler to rebalance work across
// multiple devices.
package tracer

// UpdateType identifies what kind of data an Update call is replacing.
// There are exactly two live inputs to a dispatch backend: the resident
// tree and the camera used to generate primary rays.
type UpdateType uint8

const (
	// UpdateTree replaces the resident voxel tree. The update payload
	// is a *voxel.Tree.
	UpdateTree UpdateType = iota

	// UpdateViewport replaces the camera used to generate primary rays.
	// The update payload is a Viewport.
	UpdateViewport
)

// Flag reports capabilities of a Tracer backend.
type Flag uint8

const (
	// Local marks a tracer bound to a device on this host, as opposed
	// to one proxied over the network.
	Local Flag = 1 << iota
)

// Stage is a setup-time hook attached during Init, used to build a
// tracer's rendering pipeline without the tracer package needing to know
// about tracer/opencl's pipeline stage types.
type Stage func(tr Tracer) error

// A unit of work processed by a tracer: render rows [BlockY, BlockY+BlockH)
// of a FrameW x FrameH output image.
type BlockRequest struct {
	// Output image dimensions.
	FrameW uint32
	FrameH uint32

	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// A channel to signal on block completion with the number of
	// completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics, consulted by a BlockScheduler to rebalance block
// heights across tracers between frames.
type Stats struct {
	// The rendered block height.
	BlockH uint32

	// The time for rendering this block (in nanoseconds).
	BlockTime int64
}

// Tracer is a handle to a single rendering backend bound to one device.
type Tracer interface {
	// Id returns a unique identifier for this tracer instance.
	Id() string

	// Flags reports this tracer's capabilities.
	Flags() Flag

	// Speed returns a computation speed estimate (GFlops) used by a
	// BlockScheduler for initial work distribution.
	Speed() uint32

	// Init prepares the tracer to render frames of the given
	// dimensions and attaches the supplied pipeline stages.
	Init(frameW, frameH uint32, stages ...Stage) error

	// Close releases any resources held by the tracer.
	Close()

	// Enqueue submits a block render request. Implementations may drop
	// the request if the tracer's worker is not ready to accept it.
	Enqueue(BlockRequest)

	// Update stages a pending change of the given type. Changes are
	// applied the next time a block request is processed.
	Update(UpdateType, interface{})

	// Stats returns statistics for the last rendered block.
	Stats() *Stats
}

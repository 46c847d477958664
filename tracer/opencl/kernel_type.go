package opencl

import "fmt"

type kernelType uint8

// The list of kernels that implement the tracer: this renderer emits one
// ray per pixel and shades it inline, so there is a single dispatch
// kernel plus the small per-frame reset kernels the host-side contract
// requires.
const (
	// traverse is the main per-pixel kernel: generate the primary ray,
	// walk the tree, shade the result and write it to the output image.
	traverse kernelType = iota

	// clearMailbox resets every request mailbox slot back to the empty
	// sentinel. Clearing device memory from the host would require a
	// full read-back/rewrite round trip, so a tiny kernel does it in
	// place instead.
	clearMailbox

	// clearUsageBits zeroes the node and brick usage bitmaps ahead of
	// an eviction pass.
	clearUsageBits

	numKernels
)

// Implements Stringer; map kernel type to the kernel name as defined in the CL source files.
func (kt kernelType) String() string {
	switch kt {
	case traverse:
		return "traverse"
	case clearMailbox:
		return "clearMailbox"
	case clearUsageBits:
		return "clearUsageBits"
	default:
		panic(fmt.Sprintf("Unsupported kernel type: %d", kt))
	}
}

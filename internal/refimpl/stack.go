// Package refimpl is a test-only, readable mirror of the GPU traversal
// kernel (see tracer/opencl/CL/main.cl). It exists purely so the
// documented invariants and scenarios can be checked from Go without a
// device; it is never imported by tracer, cmd, or main — there is no
// CPU-side fallback rendering path in this renderer.
package refimpl

import "github.com/achilleasa/svoxtrace/spatial"

// stackCapacity is the bounded ray stack's fixed depth. GPU register
// files make deep explicit stacks expensive; capacity is intentionally
// smaller than tree depth. The outer restart loop in Traverse recovers
// correctness when an ancestor is overwritten.
const stackCapacity = 4

const stackEmpty = 0xFF

// rayStack is a per-ray ring buffer of ancestor ("node index", "bounds")
// pairs. When full, push overwrites the oldest entry — a bounded-depth
// approximation, not a bug: the trade against register pressure is
// deliberate, and the outer restart loop in Traverse is what recovers
// correctness once an overwritten ancestor would otherwise be needed.
type rayStack struct {
	nodes  [stackCapacity]uint32
	bounds [stackCapacity]spatial.Cube
	count  uint8
	head   uint8
}

func newRayStack() *rayStack {
	return &rayStack{head: stackEmpty}
}

func (s *rayStack) push(node uint32, b spatial.Cube) {
	if s.head == stackEmpty {
		s.head = 0
	} else {
		s.head = (s.head + 1) % stackCapacity
	}
	s.nodes[s.head] = node
	s.bounds[s.head] = b
	if s.count < stackCapacity {
		s.count++
	}
}

// pop returns the top entry and retreats head; ok is false when empty.
func (s *rayStack) pop() (node uint32, b spatial.Cube, ok bool) {
	if s.count == 0 {
		return 0, spatial.Cube{}, false
	}
	node, b = s.nodes[s.head], s.bounds[s.head]
	if s.head == 0 {
		s.head = stackCapacity - 1
	} else {
		s.head--
	}
	s.count--
	return node, b, true
}

func (s *rayStack) empty() bool {
	return s.count == 0
}

package voxel

import "sync/atomic"

// UsageBits is a bit-packed array with one bit per node and per brick; the
// kernel sets these atomically to mark "consulted this frame". The host
// uses them as the reference signal for eviction (eviction policy itself
// is out of scope here — only the mechanism that maintains the bits).
type UsageBits struct {
	words []uint32
}

// NewUsageBits allocates a bit array large enough for n resources.
func NewUsageBits(n int) *UsageBits {
	return &UsageBits{words: make([]uint32, (n+31)/32)}
}

// Mark atomically sets bit i, idempotent under concurrent callers.
func (u *UsageBits) Mark(i uint32) {
	word := i / 32
	bit := uint32(1) << (i % 32)
	for {
		old := atomic.LoadUint32(&u.words[word])
		if old&bit != 0 {
			return
		}
		if atomic.CompareAndSwapUint32(&u.words[word], old, old|bit) {
			return
		}
	}
}

// Test reports whether bit i is set.
func (u *UsageBits) Test(i uint32) bool {
	return atomic.LoadUint32(&u.words[i/32])&(1<<(i%32)) != 0
}

// Clear zeroes every bit, e.g. between the host's eviction passes.
func (u *UsageBits) Clear() {
	for i := range u.words {
		atomic.StoreUint32(&u.words[i], 0)
	}
}

// Len returns the number of resource bits the array was sized for.
func (u *UsageBits) Len() int {
	return len(u.words) * 32
}

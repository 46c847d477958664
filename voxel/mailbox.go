package voxel

import (
	"sync/atomic"

	"github.com/achilleasa/svoxtrace/spatial"
)

// MailboxEmpty is the sentinel value held by an unclaimed mailbox slot.
const MailboxEmpty uint32 = 0xFFFFFFFF

const (
	requestSectantBits = 8
	requestNodeShift   = requestSectantBits
)

// Request is the unpacked view of one mailbox slot: "upload this node's
// target sectant", or, when TargetSectant equals the OOB sentinel, "upload
// this node's MIP".
type Request struct {
	NodeIndex     uint32
	TargetSectant uint8
}

// Pack encodes r into the 32-bit value the mailbox stores:
// (node_index:24) | (target_sectant:8).
func (r Request) Pack() uint32 {
	return (r.NodeIndex << requestNodeShift) | uint32(r.TargetSectant)
}

// UnpackRequest decodes a mailbox slot value produced by Pack.
func UnpackRequest(w uint32) Request {
	return Request{
		NodeIndex:     w >> requestNodeShift,
		TargetSectant: uint8(w),
	}
}

// RequestMailbox is a fixed-length array of atomic 32-bit slots. It is a
// multi-writer, single-reader set, not a queue: writers claim the first
// empty slot via compare-exchange: success, or "slot already holds
// exactly this value", both terminate the scan; reaching the end without
// either is a silent drop.
type RequestMailbox struct {
	slots []uint32
}

// NewRequestMailbox allocates a mailbox of the given length, every slot
// initialised to MailboxEmpty.
func NewRequestMailbox(length int) *RequestMailbox {
	m := &RequestMailbox{slots: make([]uint32, length)}
	m.Reset()
	return m
}

// Reset clears every slot back to MailboxEmpty, as the host does before
// each dispatch.
func (m *RequestMailbox) Reset() {
	for i := range m.slots {
		atomic.StoreUint32(&m.slots[i], MailboxEmpty)
	}
}

// Write attempts to publish r. It reports whether the request is now
// present in the mailbox (either because this call inserted it, or
// because it was already there), making repeated writes for the same
// request idempotent. A false result means the mailbox is full.
func (m *RequestMailbox) Write(r Request) bool {
	packed := r.Pack()
	for i := range m.slots {
		for {
			cur := atomic.LoadUint32(&m.slots[i])
			if cur == packed {
				return true
			}
			if cur != MailboxEmpty {
				break
			}
			if atomic.CompareAndSwapUint32(&m.slots[i], MailboxEmpty, packed) {
				return true
			}
		}
	}
	return false
}

// WriteMIPRequest publishes a request for nodeIndex's MIP brick, encoded
// with the OOB sectant sentinel as target.
func (m *RequestMailbox) WriteMIPRequest(nodeIndex uint32) bool {
	return m.Write(Request{NodeIndex: nodeIndex, TargetSectant: spatial.OOBSectant})
}

// Entries returns every currently-populated request, in slot order. The
// host streamer drains this to decide what to upload (out of scope here
// beyond exposing the decoded set; see package streamer).
func (m *RequestMailbox) Entries() []Request {
	var out []Request
	for i := range m.slots {
		v := atomic.LoadUint32(&m.slots[i])
		if v != MailboxEmpty {
			out = append(out, UnpackRequest(v))
		}
	}
	return out
}

// Len returns the mailbox's slot count.
func (m *RequestMailbox) Len() int {
	return len(m.slots)
}

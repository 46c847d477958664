// Package streamer drains the GPU-written request mailbox each frame and
// turns it into a deduplicated, FIFO work queue of tree fragments to load
// from disk and upload. The dedup-queue shape is grounded on the
// gammazero/deque BFS queue pattern used elsewhere in this dependency's
// ecosystem (a "queued" flag prevents re-enqueueing an item already
// waiting, backed by a plain FIFO for fetch order).
package streamer

import (
	"github.com/achilleasa/svoxtrace/log"
	"github.com/achilleasa/svoxtrace/voxel"
	"github.com/gammazero/deque"
)

var streamerLogger = log.New("streamer")

// key uniquely identifies one streamable unit of tree data: either a
// sectant's child subtree, or (when Sectant equals the OOB sentinel) a
// node's MIP brick.
type key struct {
	node    uint32
	sectant uint8
}

// Queue deduplicates RequestMailbox entries across frames into an ordered
// backlog a background loader can drain at its own pace. Entries still
// pending or already resident (per Residency) are dropped on arrival. Next
// stops tracking an entry once it hands it out, so a later request for the
// same sectant that is not yet resident is queued again.
type Queue struct {
	pending   deque.Deque[key]
	queued    map[key]struct{}
	resident  Residency
	delivered int
}

// Residency reports whether a streamable unit is already loaded, so the
// queue does not re-request data the tree already has.
type Residency interface {
	IsResident(nodeIndex uint32, sectant uint8) bool
}

// NewQueue builds an empty queue backed by resident.
func NewQueue(resident Residency) *Queue {
	return &Queue{
		queued:   make(map[key]struct{}),
		resident: resident,
	}
}

// Drain reads every populated slot out of mailbox, enqueues the ones that
// are neither already queued nor already resident, and resets the mailbox
// so the device can reuse its slots once this frame's requests have been
// consumed.
func (q *Queue) Drain(mailbox *voxel.RequestMailbox) int {
	added := 0
	for _, r := range mailbox.Entries() {
		k := key{node: r.NodeIndex, sectant: r.TargetSectant}
		if _, ok := q.queued[k]; ok {
			continue
		}
		if q.resident != nil && q.resident.IsResident(k.node, k.sectant) {
			continue
		}
		q.queued[k] = struct{}{}
		q.pending.PushBack(k)
		added++
	}
	mailbox.Reset()

	if added > 0 {
		streamerLogger.Debugf("streamer: enqueued %d new fragment(s), %d pending", added, q.pending.Len())
	}
	return added
}

// Request is one deduplicated unit of work the loader should fetch:
// either a child subtree (Sectant < 64) or a MIP brick (Sectant == OOB).
type Request struct {
	NodeIndex uint32
	Sectant   uint8
}

// Next pops the oldest pending request, or ok=false if the queue is empty.
func (q *Queue) Next() (req Request, ok bool) {
	if q.pending.Len() == 0 {
		return Request{}, false
	}
	k := q.pending.PopFront()
	delete(q.queued, k)
	q.delivered++
	return Request{NodeIndex: k.node, Sectant: k.sectant}, true
}

// Len reports how many distinct fragments are currently pending.
func (q *Queue) Len() int {
	return q.pending.Len()
}

// Delivered is the running count of requests handed out via Next.
func (q *Queue) Delivered() int {
	return q.delivered
}

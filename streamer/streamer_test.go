package streamer

import (
	"testing"

	"github.com/achilleasa/svoxtrace/voxel"
)

type fakeResidency map[key]bool

func (f fakeResidency) IsResident(nodeIndex uint32, sectant uint8) bool {
	return f[key{node: nodeIndex, sectant: sectant}]
}

func TestDrainDeduplicatesAcrossFrames(t *testing.T) {
	mailbox := voxel.NewRequestMailbox(8)
	mailbox.Write(voxel.Request{NodeIndex: 1, TargetSectant: 5})
	mailbox.Write(voxel.Request{NodeIndex: 1, TargetSectant: 6})

	q := NewQueue(nil)
	if added := q.Drain(mailbox); added != 2 {
		t.Fatalf("expected 2 newly queued entries, got %d", added)
	}

	// A second frame re-requesting the same sectant (still missing on the
	// device) must not grow the backlog.
	mailbox.Write(voxel.Request{NodeIndex: 1, TargetSectant: 5})
	mailbox.Write(voxel.Request{NodeIndex: 1, TargetSectant: 7})
	if added := q.Drain(mailbox); added != 1 {
		t.Fatalf("expected only the new sectant to be added, got %d", added)
	}

	if q.Len() != 3 {
		t.Fatalf("expected 3 distinct pending fragments, got %d", q.Len())
	}
}

func TestDrainSkipsAlreadyResident(t *testing.T) {
	resident := fakeResidency{{node: 2, sectant: 9}: true}
	q := NewQueue(resident)

	mailbox := voxel.NewRequestMailbox(8)
	mailbox.Write(voxel.Request{NodeIndex: 2, TargetSectant: 9})
	mailbox.Write(voxel.Request{NodeIndex: 2, TargetSectant: 10})

	if added := q.Drain(mailbox); added != 1 {
		t.Fatalf("expected only the non-resident entry to be queued, got %d", added)
	}
}

func TestDrainResetsMailbox(t *testing.T) {
	mailbox := voxel.NewRequestMailbox(4)
	mailbox.Write(voxel.Request{NodeIndex: 0, TargetSectant: 1})

	q := NewQueue(nil)
	q.Drain(mailbox)

	if len(mailbox.Entries()) != 0 {
		t.Fatalf("expected mailbox to be cleared after Drain")
	}
}

func TestNextIsFIFO(t *testing.T) {
	mailbox := voxel.NewRequestMailbox(8)
	mailbox.Write(voxel.Request{NodeIndex: 0, TargetSectant: 1})
	mailbox.Write(voxel.Request{NodeIndex: 0, TargetSectant: 2})

	q := NewQueue(nil)
	q.Drain(mailbox)

	first, ok := q.Next()
	if !ok || first.Sectant != 1 {
		t.Fatalf("expected sectant 1 first, got %+v ok=%v", first, ok)
	}
	second, ok := q.Next()
	if !ok || second.Sectant != 2 {
		t.Fatalf("expected sectant 2 second, got %+v ok=%v", second, ok)
	}
	if _, ok := q.Next(); ok {
		t.Fatalf("expected queue to be empty")
	}
	if q.Delivered() != 2 {
		t.Fatalf("expected delivered count 2, got %d", q.Delivered())
	}
}

func TestRequeueAfterDeliveryAllowsRefetch(t *testing.T) {
	q := NewQueue(nil)
	mailbox := voxel.NewRequestMailbox(4)
	mailbox.Write(voxel.Request{NodeIndex: 3, TargetSectant: 4})
	q.Drain(mailbox)
	q.Next()

	// Once delivered, the same fragment can be queued again if it is
	// requested a second time (e.g. evicted and re-requested later).
	mailbox.Write(voxel.Request{NodeIndex: 3, TargetSectant: 4})
	if added := q.Drain(mailbox); added != 1 {
		t.Fatalf("expected the delivered fragment to be re-queueable, got %d", added)
	}
}

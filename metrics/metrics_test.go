package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveMailboxUpdatesCounters(t *testing.T) {
	before := testutil.ToFloat64(RequestsWritten)
	droppedBefore := testutil.ToFloat64(RequestsDropped)

	ObserveMailbox(3, 1)

	if got := testutil.ToFloat64(RequestsWritten); got != before+3 {
		t.Fatalf("expected RequestsWritten to increase by 3, got %f (was %f)", got, before)
	}
	if got := testutil.ToFloat64(RequestsDropped); got != droppedBefore+1 {
		t.Fatalf("expected RequestsDropped to increase by 1, got %f (was %f)", got, droppedBefore)
	}
}

// Package metrics exposes Prometheus collectors for the render loop:
// dispatch latency, mailbox request volume, and streamer backlog. The
// promauto package-level collector pattern is grounded on
// aukilabs-hagall's websocket/metrics.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesDispatched counts completed GPU dispatch calls, one per
	// rendered frame.
	FramesDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "svoxtrace_frames_dispatched_total",
		Help: "Number of frames dispatched to the GPU kernel.",
	})

	// DispatchDuration observes wall-clock time for a single kernel
	// dispatch + wait, in seconds.
	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "svoxtrace_dispatch_duration_seconds",
		Help:    "Time spent waiting on a single frame's kernel dispatch.",
		Buckets: prometheus.DefBuckets,
	})

	// RequestsWritten counts node/MIP requests successfully published to
	// a frame's request mailbox.
	RequestsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "svoxtrace_requests_written_total",
		Help: "Number of node or MIP requests written to the request mailbox.",
	})

	// RequestsDropped counts requests that found the mailbox full.
	RequestsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "svoxtrace_requests_dropped_total",
		Help: "Number of node or MIP requests dropped because the mailbox was full.",
	})

	// UsageTouches counts UsageBits.Mark calls, one per node visited by
	// any ray in a frame.
	UsageTouches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "svoxtrace_usage_touches_total",
		Help: "Number of node visits recorded in the usage bitmap.",
	})

	// StreamerBacklog reports the streamer queue's current pending
	// fragment count, sampled once per frame.
	StreamerBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "svoxtrace_streamer_backlog",
		Help: "Number of distinct tree fragments queued for loading.",
	})

	// StreamerDelivered counts fragments the streamer has handed to the
	// loader since startup.
	StreamerDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "svoxtrace_streamer_delivered_total",
		Help: "Number of tree fragments the streamer has delivered to the loader.",
	})
)

// ObserveMailbox folds one frame's request-mailbox outcome into the
// written/dropped counters.
func ObserveMailbox(written, dropped int) {
	RequestsWritten.Add(float64(written))
	RequestsDropped.Add(float64(dropped))
}

package renderer

import (
	"fmt"
	"time"

	"github.com/achilleasa/svoxtrace/tracer"
	"github.com/achilleasa/svoxtrace/tracer/opencl"
	"github.com/achilleasa/svoxtrace/tracer/opencl/device"
	"github.com/achilleasa/svoxtrace/voxel"
	"github.com/google/uuid"
)

// defaultRenderer coordinates a pool of tracers, splitting each frame into
// horizontal blocks via a BlockScheduler and dispatching them concurrently.
type defaultRenderer struct {
	tracers   []tracer.Tracer
	scheduler tracer.BlockScheduler
	options   Options

	blockAssignments []uint32
	lastFrameTime    int64

	hasTree     bool
	hasViewport bool

	stats FrameStats
}

// NewDefault builds a Renderer bound to every opencl device that matches
// opts' device selection, uploads tree and viewport to each tracer, and
// attaches pipeline as the rendering pipeline for every tracer it creates.
func NewDefault(tree *voxel.Tree, viewport opencl.Viewport, scheduler tracer.BlockScheduler, pipeline *opencl.Pipeline, opts Options) (Renderer, error) {
	devices, err := selectDevices(opts)
	if err != nil {
		return nil, err
	}

	r := &defaultRenderer{
		scheduler: scheduler,
		options:   opts,
	}

	for _, dev := range devices {
		id := fmt.Sprintf("%s-%s", dev.Name, uuid.NewString())
		tr, err := opencl.NewTracer(id, dev)
		if err != nil {
			r.Close()
			return nil, err
		}

		if err = tr.Init(opts.FrameW, opts.FrameH, opencl.WithPipeline(pipeline)); err != nil {
			r.Close()
			return nil, err
		}

		r.tracers = append(r.tracers, tr)
	}

	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	if tree != nil {
		r.SetTree(tree)
	}
	r.SetViewport(viewport)

	return r, nil
}

// selectDevices resolves opts' device selection into a concrete device
// list: ForcePrimaryDevice narrows the match by name, BlackListedDevices
// filters out any device whose name appears in the list.
func selectDevices(opts Options) ([]*device.Device, error) {
	matchName := opts.ForcePrimaryDevice

	candidates, err := device.SelectDevices(device.AllDevices, matchName)
	if err != nil {
		return nil, err
	}

	if len(opts.BlackListedDevices) == 0 {
		return candidates, nil
	}

	blacklisted := make(map[string]bool, len(opts.BlackListedDevices))
	for _, name := range opts.BlackListedDevices {
		blacklisted[name] = true
	}

	filtered := make([]*device.Device, 0, len(candidates))
	for _, d := range candidates {
		if !blacklisted[d.Name] {
			filtered = append(filtered, d)
		}
	}

	return filtered, nil
}

// SetTree stages a new tree for every attached tracer, applied before the
// next block it renders.
func (r *defaultRenderer) SetTree(tree *voxel.Tree) {
	for _, tr := range r.tracers {
		tr.Update(tracer.UpdateTree, tree)
	}
	r.hasTree = true
}

// SetViewport stages a new viewport for every attached tracer, applied
// before the next block it renders.
func (r *defaultRenderer) SetViewport(viewport opencl.Viewport) {
	for _, tr := range r.tracers {
		tr.Update(tracer.UpdateViewport, viewport)
	}
	r.hasViewport = true
}

// Render splits the frame across the attached tracers using the configured
// BlockScheduler and blocks until every assigned block completes.
func (r *defaultRenderer) Render() error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}
	if !r.hasTree {
		return ErrTreeNotDefined
	}
	if !r.hasViewport {
		return ErrViewportMissing
	}

	start := time.Now()

	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH, r.lastFrameTime)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	var blockY uint32
	for idx, tr := range r.tracers {
		tr.Enqueue(tracer.BlockRequest{
			FrameW:   r.options.FrameW,
			FrameH:   r.options.FrameH,
			BlockY:   blockY,
			BlockH:   r.blockAssignments[idx],
			DoneChan: doneChan,
			ErrChan:  errChan,
		})
		blockY += r.blockAssignments[idx]
	}

	tracerStats := make([]TracerStat, len(r.tracers))
	var renderErr error
	for i := 0; i < len(r.tracers); i++ {
		select {
		case <-doneChan:
		case err := <-errChan:
			if renderErr == nil {
				renderErr = err
			}
		}
	}
	if renderErr != nil {
		return renderErr
	}

	for idx, tr := range r.tracers {
		s := tr.Stats()
		tracerStats[idx] = TracerStat{
			Id:           tr.Id(),
			IsPrimary:    idx == 0,
			BlockH:       s.BlockH,
			FramePercent: 100.0 * float32(s.BlockH) / float32(r.options.FrameH),
			RenderTime:   time.Duration(s.BlockTime),
		}
	}

	r.stats = FrameStats{
		Tracers:    tracerStats,
		RenderTime: time.Since(start),
	}
	r.lastFrameTime = int64(r.stats.RenderTime)

	return nil
}

// Close shuts down every attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Stats returns statistics for the last rendered frame.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

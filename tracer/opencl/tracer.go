package opencl

import (
	"fmt"
	"path"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/svoxtrace/log"
	"github.com/achilleasa/svoxtrace/tracer"
	"github.com/achilleasa/svoxtrace/tracer/opencl/device"
	"github.com/achilleasa/svoxtrace/voxel"
)

// defaultMailboxLen bounds the request mailbox to a fixed slot count. A
// request that finds the mailbox full is simply dropped and retried on a
// later frame once the traversal reaches that node again.
const defaultMailboxLen = 256

type clTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The device associated with this tracer instance.
	device *device.Device

	// The allocated device resources.
	resources *deviceResources

	// The tracer id.
	id string

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered frame.
	stats *tracer.Stats

	// The tracer rendering pipeline.
	pipeline *Pipeline

	// Device speed in Gflops.
	speed uint32

	// The currently uploaded tree, or nil before the first
	// tracer.UpdateTree.
	tree *voxel.Tree

	// The current camera, or the zero value before the first
	// tracer.UpdateViewport.
	viewport Viewport

	// Fixed length of the request mailbox, chosen at construction time.
	mailboxLen int
}

// NewTracer creates a new opencl tracer bound to device.
func NewTracer(id string, dev *device.Device) (tracer.Tracer, error) {
	loggerName := fmt.Sprintf("opencl tracer (%s)", dev.Name)

	tr := &clTracer{
		logger:       log.New(loggerName),
		device:       dev,
		id:           id,
		blockReqChan: make(chan tracer.BlockRequest, 0),
		updateBuffer: make(map[tracer.UpdateType]interface{}, 0),
		stats:        &tracer.Stats{},
		speed:        dev.Speed,
		mailboxLen:   defaultMailboxLen,
	}

	return tr, nil
}

// Get tracer id.
func (tr *clTracer) Id() string {
	return tr.id
}

// Get tracer flags.
func (tr *clTracer) Flags() tracer.Flag {
	return tracer.Local
}

// Get the computation speed estimate (in GFlops).
func (tr *clTracer) Speed() uint32 {
	return tr.speed
}

// Initialize tracer.
func (tr *clTracer) Init(frameW, frameH uint32, stages ...tracer.Stage) error {
	var err error
	tr.Lock()
	defer tr.Unlock()

	_, thisFile, _, _ := runtime.Caller(0)
	pathToMainKernel := path.Join(path.Dir(thisFile), relativePathToMainKernel)
	err = tr.device.Init(pathToMainKernel)
	if err != nil {
		tr.cleanup()
		return err
	}

	tr.resources, err = newDeviceResources(frameW, frameH, tr.device)
	if err != nil {
		tr.cleanup()
		return err
	}

	tr.pipeline = DefaultPipeline(false)

	for _, stageFn := range stages {
		if err = stageFn(tr); err != nil {
			tr.cleanup()
			return err
		}
	}

	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *clTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.cleanup()
}

// Cleanup tracer. This method is meant to be called while holding tr.Lock().
func (tr *clTracer) cleanup() {
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}
		<-tr.closeChan
		close(tr.closeChan)
	}

	if tr.resources != nil {
		tr.resources.Close()
		tr.resources = nil
	}

	if tr.device != nil {
		tr.device.Close()
		tr.device = nil
	}

	tr.tree = nil
}

// Enqueue block request.
func (tr *clTracer) Enqueue(blockReq tracer.BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		tr.logger.Error("request processor did not receive block request")
	}
}

// Update stages a change to the tracer's update buffer.
func (tr *clTracer) Update(updateType tracer.UpdateType, data interface{}) {
	tr.updateBuffer[updateType] = data
}

// Retrieve last frame statistics.
func (tr *clTracer) Stats() *tracer.Stats {
	return tr.stats
}

// UploadTree uploads t's flattened arrays to the device buffers and sizes
// the atomic feedback buffers to match.
func (tr *clTracer) UploadTree(t *voxel.Tree) error {
	tr.tree = t
	return tr.resources.buffers.UploadTree(t, tr.mailboxLen)
}

// metaArgs packs the current tree's metadata into the scalar kernel args
// the traverse kernel expects.
func (tr *clTracer) metaArgs() MetaArgs {
	if tr.tree == nil {
		return MetaArgs{}
	}
	m := tr.tree.Metadata
	return MetaArgs{
		AmbientColor:    m.AmbientColor,
		AmbientPosition: m.AmbientPosition,
		RootSize:        m.RootSize,
		Properties:      m.Properties(),
	}
}

// Commit queued changes.
func (tr *clTracer) commitUpdates() error {
	for updateType, data := range tr.updateBuffer {
		var err error
		switch updateType {
		case tracer.UpdateTree:
			err = tr.UploadTree(data.(*voxel.Tree))
		case tracer.UpdateViewport:
			tr.viewport = data.(Viewport)
		default:
			return ErrUnsupportedUpdate
		}
		if err != nil {
			return err
		}
	}

	tr.updateBuffer = make(map[tracer.UpdateType]interface{}, 0)
	return nil
}

// Spawn a go-routine to process block render requests.
func (tr *clTracer) startWorker() {
	if tr.closeChan != nil {
		return
	}
	tr.closeChan = make(chan struct{}, 0)

	readyChan := make(chan struct{}, 0)
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq tracer.BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				if len(tr.updateBuffer) != 0 {
					startTime = time.Now()
					if err = tr.commitUpdates(); err != nil {
						blockReq.ErrChan <- err
						continue
					}
					tr.stats.BlockTime = int64(time.Since(startTime))
				}

				startTime = time.Now()
				if err = tr.renderBlock(&blockReq); err != nil {
					blockReq.ErrChan <- err
					continue
				}

				tr.stats.BlockH = blockReq.BlockH
				tr.stats.BlockTime = int64(time.Since(startTime))

				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	<-readyChan
}

// Render block.
func (tr *clTracer) renderBlock(blockReq *tracer.BlockRequest) error {
	if tr.tree == nil {
		return ErrNoTreeData
	}

	if _, err := tr.pipeline.Reset(tr, blockReq); err != nil {
		return err
	}
	if _, err := tr.pipeline.Dispatch(tr, blockReq); err != nil {
		return err
	}
	for _, stage := range tr.pipeline.PostProcess {
		if _, err := stage(tr, blockReq); err != nil {
			return err
		}
	}

	return nil
}

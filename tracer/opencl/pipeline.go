package opencl

import (
	"image"
	"image/png"
	"os"
	"time"

	"github.com/achilleasa/svoxtrace/tracer"
	"github.com/achilleasa/svoxtrace/voxel"
)

// An alias for functions that can be used as part of the rendering
// pipeline.
type PipelineStage func(tr *clTracer, blockReq *tracer.BlockRequest) (time.Duration, error)

// The list of pluggable stages used to render a block. One ray per pixel
// is shaded inline with no accumulator and no bounces, so Reset/Dispatch
// are the only stages, with debug frame dumping kept as an optional
// post-process.
type Pipeline struct {
	// Reset runs ahead of dispatch. The stock ClearMailbox stage clears
	// the request mailbox only; no stock stage clears the usage bitmap.
	Reset PipelineStage

	// Dispatch runs the traverse kernel over the block's rows.
	Dispatch PipelineStage

	// Optional post-processing stages, e.g. dumping the frame buffer
	// to disk for debugging.
	PostProcess []PipelineStage
}

func DefaultPipeline(debugFrameBuffer bool) *Pipeline {
	p := &Pipeline{
		Reset:    ClearMailbox(),
		Dispatch: Dispatch(),
	}
	if debugFrameBuffer {
		p.PostProcess = append(p.PostProcess, DebugFrameBuffer("debug-fb.png"))
	}
	return p
}

// WithPipeline attaches p to a tracer as an Init-time stage, letting a
// caller outside this package (e.g. renderer.NewDefault) override the
// default pipeline without the tracer package needing to know about
// PipelineStage.
func WithPipeline(p *Pipeline) tracer.Stage {
	return func(tr tracer.Tracer) error {
		clTr, ok := tr.(*clTracer)
		if !ok {
			return nil
		}
		clTr.pipeline = p
		return nil
	}
}

// ClearMailbox resets the request mailbox ahead of dispatch.
func ClearMailbox() PipelineStage {
	return func(tr *clTracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		return tr.resources.ClearMailbox(tr.mailboxLen)
	}
}

// Dispatch runs the traverse kernel for blockReq's rows using the
// tracer's current viewport and tree metadata.
func Dispatch() PipelineStage {
	return func(tr *clTracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		return tr.resources.Traverse(blockReq, tr.viewport, tr.metaArgs(), tr.mailboxLen)
	}
}

// DebugFrameBuffer dumps a copy of the RGBA output image to imgFile.
func DebugFrameBuffer(imgFile string) PipelineStage {
	return func(tr *clTracer, blockReq *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()

		f, err := os.Create(imgFile)
		if err != nil {
			return 0, err
		}
		defer f.Close()

		im := image.NewRGBA(image.Rect(0, 0, int(blockReq.FrameW), int(blockReq.FrameH)))
		err = tr.resources.buffers.FrameBuffer.ReadData(0, 0, tr.resources.buffers.FrameBuffer.Size(), im.Pix)
		if err != nil {
			return 0, err
		}

		return time.Since(start), png.Encode(f, im)
	}
}

// readRequests reads the current request mailbox contents back from the
// device, decoding every populated slot.
func readRequests(dr *deviceResources, mailboxLen int) ([]voxel.Request, error) {
	raw := make([]uint32, mailboxLen)
	if err := dr.buffers.RequestMailbox.ReadData(0, 0, 0, raw); err != nil {
		return nil, err
	}

	var out []voxel.Request
	for _, w := range raw {
		if w != voxel.MailboxEmpty {
			out = append(out, voxel.UnpackRequest(w))
		}
	}
	return out, nil
}

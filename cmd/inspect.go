package cmd

import (
	"errors"

	"github.com/achilleasa/svoxtrace/asset/tree"
	"github.com/achilleasa/svoxtrace/camera"
	"github.com/achilleasa/svoxtrace/renderer"
	"github.com/achilleasa/svoxtrace/tracer"
	"github.com/achilleasa/svoxtrace/tracer/opencl"
	"github.com/achilleasa/svoxtrace/types"
	"github.com/urfave/cli"
)

// Inspect loads a tree file and logs its metadata/array stats. When -debug-fb
// is set it also dispatches a single frame through the real GPU pipeline and
// dumps the raw frame buffer to debug-fb.png, useful for eyeballing a tree
// without the full render command's camera-orbit flags.
func Inspect(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing tree file argument")
	}

	t, err := tree.ReadResource(ctx.Args().First())
	if err != nil {
		return err
	}

	logger.Noticef("tree stats\n%s", tree.Stats(t))

	if !ctx.Bool("debug-fb") {
		return nil
	}

	frameW, frameH := uint32(256), uint32(256)
	opts := renderer.Options{
		FrameW: frameW,
		FrameH: frameH,
	}

	cam := camera.Camera{Origin: t.Metadata.AmbientPosition}
	viewport := opencl.Viewport{
		Origin:    cam.Origin,
		Direction: cam.Direction(),
		Frustum:   types.XYZ(1, 1, 1),
		Fov:       0.9,
	}

	pipeline := opencl.DefaultPipeline(true)

	r, err := renderer.NewDefault(t, viewport, tracer.NewPerfectScheduler(), pipeline, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Render()
}

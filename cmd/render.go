package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/achilleasa/svoxtrace/asset/tree"
	"github.com/achilleasa/svoxtrace/camera"
	"github.com/achilleasa/svoxtrace/renderer"
	"github.com/achilleasa/svoxtrace/tracer"
	"github.com/achilleasa/svoxtrace/tracer/opencl"
	"github.com/achilleasa/svoxtrace/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// RenderFrame renders a single still frame of a voxel tree to a PNG file.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing tree file argument")
	}

	t, err := tree.ReadResource(ctx.Args().First())
	if err != nil {
		return err
	}

	cfg := RenderConfig{
		FrameW:             uint32(ctx.Int("width")),
		FrameH:             uint32(ctx.Int("height")),
		Fov:                float32(ctx.Float64("fov")),
		Yaw:                float32(ctx.Float64("yaw")),
		Pitch:              float32(ctx.Float64("pitch")),
		BlackListedDevices: ctx.StringSlice("blacklist"),
		ForcePrimaryDevice: ctx.String("force-primary"),
	}
	if path := ctx.String("config"); path != "" {
		fileCfg, err := LoadRenderConfig(path)
		if err != nil {
			return err
		}
		applyConfigDefaults(ctx, &cfg, fileCfg)
	}

	opts := renderer.Options{
		FrameW:             cfg.FrameW,
		FrameH:             cfg.FrameH,
		BlackListedDevices: cfg.BlackListedDevices,
		ForcePrimaryDevice: cfg.ForcePrimaryDevice,
	}

	cam := camera.Camera{
		Origin: t.Metadata.AmbientPosition,
		Yaw:    cfg.Yaw * math.Pi / 180,
		Pitch:  cfg.Pitch * math.Pi / 180,
	}

	viewport := opencl.Viewport{
		Origin:    cam.Origin,
		Direction: cam.Direction(),
		Frustum:   types.XYZ(1, float32(opts.FrameH)/float32(opts.FrameW), 1),
		Fov:       cfg.Fov * math.Pi / 180,
	}

	pipeline := &opencl.Pipeline{
		Reset:       opencl.ClearMailbox(),
		Dispatch:    opencl.Dispatch(),
		PostProcess: []opencl.PipelineStage{opencl.DebugFrameBuffer(ctx.String("out"))},
	}

	r, err := renderer.NewDefault(t, viewport, tracer.NewPerfectScheduler(), pipeline, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}

	displayFrameStats(r.Stats())
	return nil
}

// applyConfigDefaults fills any cfg field whose corresponding flag was not
// explicitly passed on the command line with the value loaded from a
// RenderConfig file. Explicit flags always win.
func applyConfigDefaults(ctx *cli.Context, cfg *RenderConfig, fileCfg *RenderConfig) {
	if !ctx.IsSet("width") && fileCfg.FrameW != 0 {
		cfg.FrameW = fileCfg.FrameW
	}
	if !ctx.IsSet("height") && fileCfg.FrameH != 0 {
		cfg.FrameH = fileCfg.FrameH
	}
	if !ctx.IsSet("fov") && fileCfg.Fov != 0 {
		cfg.Fov = fileCfg.Fov
	}
	if !ctx.IsSet("yaw") {
		cfg.Yaw = fileCfg.Yaw
	}
	if !ctx.IsSet("pitch") {
		cfg.Pitch = fileCfg.Pitch
	}
	if !ctx.IsSet("blacklist") && len(fileCfg.BlackListedDevices) > 0 {
		cfg.BlackListedDevices = fileCfg.BlackListedDevices
	}
	if !ctx.IsSet("force-primary") && fileCfg.ForcePrimaryDevice != "" {
		cfg.ForcePrimaryDevice = fileCfg.ForcePrimaryDevice
	}
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Primary", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}

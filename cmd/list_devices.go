package cmd

import (
	"github.com/achilleasa/svoxtrace/tracer/opencl/device"
	"github.com/urfave/cli"
)

// ListDevices prints every opencl platform and device this host can see.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	platforms, err := device.GetPlatformInfo()
	if err != nil {
		return err
	}

	for _, p := range platforms {
		logger.Noticef("platform:\n%s", p.String())
	}

	return nil
}

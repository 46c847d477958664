package main

import (
	"os"

	"github.com/achilleasa/svoxtrace/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "svoxtrace"
	app.Usage = "render a GPU-resident sparse voxel tree"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list available opencl devices",
			Action: cmd.ListDevices,
		},
		{
			Name:      "inspect",
			Usage:     "print a tree's metadata and array stats",
			ArgsUsage: "tree_file.zip | http(s)://host/tree_file.zip",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "debug-fb",
					Usage: "also render one frame from the tree's ambient position to debug-fb.png",
				},
			},
			Action: cmd.Inspect,
		},
		{
			Name:      "render",
			Usage:     "render a single still frame",
			ArgsUsage: "tree_file.zip | http(s)://host/tree_file.zip",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.Float64Flag{
					Name:  "fov",
					Value: 60,
					Usage: "horizontal field of view, in degrees",
				},
				cli.Float64Flag{
					Name:  "yaw",
					Value: 0,
					Usage: "camera yaw, in degrees",
				},
				cli.Float64Flag{
					Name:  "pitch",
					Value: 0,
					Usage: "camera pitch, in degrees",
				},
				cli.StringSliceFlag{
					Name:  "blacklist, b",
					Value: &cli.StringSlice{},
					Usage: "blacklist the opencl device whose name equals this value",
				},
				cli.StringFlag{
					Name:  "force-primary",
					Usage: "only use opencl devices whose names contain this value",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
				cli.StringFlag{
					Name:  "config, c",
					Usage: "load defaults for any flag not explicitly set from a RenderConfig JSON file",
				},
			},
			Action: cmd.RenderFrame,
		},
	}

	app.Run(os.Args)
}

package cmd

import (
	"io/ioutil"

	"github.com/segmentio/encoding/json"
)

// RenderConfig mirrors renderer.Options/camera.Camera as a loadable JSON
// document, so repeated render invocations don't need to restate every
// flag on the command line every time.
type RenderConfig struct {
	FrameW uint32 `json:"frame_w"`
	FrameH uint32 `json:"frame_h"`

	Fov   float32 `json:"fov"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`

	BlackListedDevices []string `json:"blacklisted_devices"`
	ForcePrimaryDevice string   `json:"force_primary_device"`
}

// LoadRenderConfig reads a RenderConfig from path.
func LoadRenderConfig(path string) (*RenderConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RenderConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

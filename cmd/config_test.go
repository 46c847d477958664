package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRenderConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "render.json")

	contents := `{
		"frame_w": 640,
		"frame_h": 480,
		"fov": 50,
		"yaw": 10,
		"pitch": -5,
		"blacklisted_devices": ["Intel"],
		"force_primary_device": "NVIDIA"
	}`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRenderConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.FrameW != 640 || cfg.FrameH != 480 {
		t.Fatalf("unexpected frame dims: %dx%d", cfg.FrameW, cfg.FrameH)
	}
	if cfg.Fov != 50 || cfg.Yaw != 10 || cfg.Pitch != -5 {
		t.Fatalf("unexpected camera fields: %+v", cfg)
	}
	if len(cfg.BlackListedDevices) != 1 || cfg.BlackListedDevices[0] != "Intel" {
		t.Fatalf("unexpected blacklist: %v", cfg.BlackListedDevices)
	}
	if cfg.ForcePrimaryDevice != "NVIDIA" {
		t.Fatalf("unexpected force primary device: %s", cfg.ForcePrimaryDevice)
	}
}

func TestLoadRenderConfigMissingFile(t *testing.T) {
	if _, err := LoadRenderConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

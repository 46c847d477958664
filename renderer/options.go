package renderer

// Options controls how a Renderer builds its tracer pool and dispatches
// frames. This renderer produces one deterministic image per tree/viewport
// pair, so there is nothing to accumulate or tonemap.
type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Device selection.
	BlackListedDevices []string
	ForcePrimaryDevice string
}

// Package camera provides a yaw/pitch orbit camera used by the render
// command to build a tracer/opencl.Viewport without requiring a caller to
// hand-compute a direction vector.
package camera

import "github.com/achilleasa/svoxtrace/types"

// Camera is a position plus a yaw/pitch orientation. It carries no FOV or
// lens state; the pixel driver (tracer/opencl/CL/main.cl) owns that
// separately as part of the viewport it's handed.
type Camera struct {
	Origin types.Vec3
	Yaw    float32
	Pitch  float32
}

// Direction returns the unit look vector for the camera's current
// orientation: yaw rotates around world Y, pitch around the resulting
// local X axis.
func (c Camera) Direction() types.Vec3 {
	yawQuat := types.QuatFromAxisAngle(types.XYZ(0, 1, 0), c.Yaw)
	pitchQuat := types.QuatFromAxisAngle(types.XYZ(1, 0, 0), c.Pitch)
	return yawQuat.Mul(pitchQuat).Normalize().Direction()
}

// Orbit nudges the camera's yaw/pitch by the given deltas, clamping pitch to
// +/- 89 degrees (in radians) to avoid gimbal flip at the poles.
func (c *Camera) Orbit(deltaYaw, deltaPitch float32) {
	const maxPitch = 1.553343 // ~89 degrees in radians

	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

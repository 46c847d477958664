package renderer

import "errors"

var (
	ErrNoTracers       = errors.New("renderer: no tracers attached")
	ErrTreeNotDefined  = errors.New("renderer: no tree defined")
	ErrViewportMissing = errors.New("renderer: no viewport defined")
	ErrInterrupted     = errors.New("renderer: interrupted while rendering")
)

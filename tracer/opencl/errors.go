package opencl

import "errors"

var (
	// ErrNoTreeData is returned when a block is rendered before a tree
	// has been uploaded via Update(tracer.UpdateTree, ...).
	ErrNoTreeData = errors.New("opencl tracer: no tree data uploaded")

	// ErrUnsupportedUpdate is returned for an UpdateType the tracer
	// does not recognise.
	ErrUnsupportedUpdate = errors.New("opencl tracer: unsupported update type")
)

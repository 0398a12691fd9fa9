package lua

import "errors"

var (
	// ErrStateClosed is returned by every State method after Close.
	ErrStateClosed = errors.New("lua: state closed")

	// ErrExecutionTimeout is returned when a chunk or call outlives the
	// state's timeout.
	ErrExecutionTimeout = errors.New("lua: evaluation timed out")

	// ErrNotFunction is returned by Call for a global that is not callable.
	ErrNotFunction = errors.New("lua: value is not a function")
)

package kernel

import "errors"

var (
	// ErrNoEvaluator indicates the kernel was created without an evaluator.
	ErrNoEvaluator = errors.New("kernel: no evaluator")

	// ErrCallUnsupported indicates the evaluator cannot call functions by
	// name.
	ErrCallUnsupported = errors.New("kernel: evaluator cannot call functions")
)

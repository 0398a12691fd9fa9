package execctx

import "errors"

// ErrMissingEvaluator is returned to magics that need an evaluator when the
// session has none.
var ErrMissingEvaluator = errors.New("execution context: no evaluator attached")

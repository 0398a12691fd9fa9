// Package execctx provides the execution context passed to magic handlers.
package execctx

import (
	"context"

	"github.com/dshills/magicshell/internal/evaluator"
)

// OutputInterface abstracts the user-visible output channel of the host.
type OutputInterface interface {
	// Print writes normal output.
	Print(text string)
	// Error writes error output.
	Error(text string)
}

// ExecutionContext provides handlers with access to session state.
type ExecutionContext struct {
	// Context carries cancellation from the host. Handlers that block should
	// honour it; the dispatcher itself never waits on it.
	Context context.Context

	// Evaluator is the interpreter of the session (may be nil).
	Evaluator evaluator.Evaluator

	// Output is the user-visible output channel (may be nil).
	Output OutputInterface

	// Kind and Name identify the magic being run.
	Kind string
	Name string

	// Code is the text the magic applies to: the cell body for cell
	// magics, the raw argument text for line magics.
	Code string

	// Evaluate reports whether the host should evaluate the remaining code
	// after the magics of a cell ran. Handlers clear it to consume the code.
	Evaluate bool

	// Data holds values shared between the magics of one chain.
	Data map[string]interface{}
}

// New creates an execution context with evaluation enabled.
func New() *ExecutionContext {
	return &ExecutionContext{
		Context:  context.Background(),
		Evaluate: true,
		Data:     make(map[string]interface{}),
	}
}

// WithContext sets the host context.
func (ctx *ExecutionContext) WithContext(c context.Context) *ExecutionContext {
	if c != nil {
		ctx.Context = c
	}
	return ctx
}

// WithEvaluator sets the evaluator.
func (ctx *ExecutionContext) WithEvaluator(ev evaluator.Evaluator) *ExecutionContext {
	ctx.Evaluator = ev
	return ctx
}

// WithOutput sets the output channel.
func (ctx *ExecutionContext) WithOutput(out OutputInterface) *ExecutionContext {
	ctx.Output = out
	return ctx
}

// WithCode sets the code the magic applies to.
func (ctx *ExecutionContext) WithCode(code string) *ExecutionContext {
	ctx.Code = code
	return ctx
}

// Print writes to the output channel if one is set.
func (ctx *ExecutionContext) Print(text string) {
	if ctx.Output != nil {
		ctx.Output.Print(text)
	}
}

// Error writes to the error channel if one is set.
func (ctx *ExecutionContext) Error(text string) {
	if ctx.Output != nil {
		ctx.Output.Error(text)
	}
}

// RequireEvaluator returns the evaluator or ErrMissingEvaluator.
func (ctx *ExecutionContext) RequireEvaluator() (evaluator.Evaluator, error) {
	if ctx.Evaluator == nil {
		return nil, ErrMissingEvaluator
	}
	return ctx.Evaluator, nil
}

// SetData stores a value shared with later magics of the chain.
func (ctx *ExecutionContext) SetData(key string, value interface{}) {
	if ctx.Data == nil {
		ctx.Data = make(map[string]interface{})
	}
	ctx.Data[key] = value
}

// GetData retrieves a shared value.
func (ctx *ExecutionContext) GetData(key string) (interface{}, bool) {
	if ctx.Data == nil {
		return nil, false
	}
	v, ok := ctx.Data[key]
	return v, ok
}

// DeleteData removes a shared value.
func (ctx *ExecutionContext) DeleteData(key string) {
	delete(ctx.Data, key)
}

// GetDataString retrieves a shared string value ("" if absent).
func (ctx *ExecutionContext) GetDataString(key string) string {
	if v, ok := ctx.GetData(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

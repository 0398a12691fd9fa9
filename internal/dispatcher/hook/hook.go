package hook

import (
	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
)

// Hook is a named, prioritized dispatch hook. A hook implements
// PreDispatchHook, PostDispatchHook or both.
//
// Priorities of 1000 and above are reserved for the session (audit,
// filtering), 500 to 999 for magic packages and anything lower for user
// hooks.
type Hook interface {
	// Name identifies the hook. Registering a second hook of the same name
	// replaces the first.
	Name() string
	Priority() int
}

// PreDispatchHook runs before the magic of req resolves. It may rewrite
// req and store data on ctx for the magic. Returning false cancels the
// dispatch; the magic does not run and the chain stays active.
type PreDispatchHook interface {
	Hook
	PreDispatch(req *handler.Request, ctx *execctx.ExecutionContext) bool
}

// PostDispatchHook runs after the dispatch, also for magics that were not
// found. It may rewrite the result.
type PostDispatchHook interface {
	Hook
	PostDispatch(req *handler.Request, ctx *execctx.ExecutionContext, result *handler.Result)
}

// PreDispatchFunc adapts a function to PreDispatchHook. A nil function
// lets every dispatch through.
type PreDispatchFunc struct {
	name     string
	priority int
	fn       func(req *handler.Request, ctx *execctx.ExecutionContext) bool
}

// NewPreDispatchFunc creates a PreDispatchFunc.
func NewPreDispatchFunc(name string, priority int, fn func(req *handler.Request, ctx *execctx.ExecutionContext) bool) *PreDispatchFunc {
	return &PreDispatchFunc{name: name, priority: priority, fn: fn}
}

// Name implements Hook.
func (f *PreDispatchFunc) Name() string { return f.name }

// Priority implements Hook.
func (f *PreDispatchFunc) Priority() int { return f.priority }

// PreDispatch implements PreDispatchHook.
func (f *PreDispatchFunc) PreDispatch(req *handler.Request, ctx *execctx.ExecutionContext) bool {
	return f.fn == nil || f.fn(req, ctx)
}

// PostDispatchFunc adapts a function to PostDispatchHook.
type PostDispatchFunc struct {
	name     string
	priority int
	fn       func(req *handler.Request, ctx *execctx.ExecutionContext, result *handler.Result)
}

// NewPostDispatchFunc creates a PostDispatchFunc.
func NewPostDispatchFunc(name string, priority int, fn func(req *handler.Request, ctx *execctx.ExecutionContext, result *handler.Result)) *PostDispatchFunc {
	return &PostDispatchFunc{name: name, priority: priority, fn: fn}
}

// Name implements Hook.
func (f *PostDispatchFunc) Name() string { return f.name }

// Priority implements Hook.
func (f *PostDispatchFunc) Priority() int { return f.priority }

// PostDispatch implements PostDispatchHook.
func (f *PostDispatchFunc) PostDispatch(req *handler.Request, ctx *execctx.ExecutionContext, result *handler.Result) {
	if f.fn != nil {
		f.fn(req, ctx, result)
	}
}

package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/dispatcher/hook"
	"github.com/dshills/magicshell/internal/option"
)

// State is the state of a dispatch chain.
type State uint8

const (
	// StateActive chains dispatch normally.
	StateActive State = iota
	// StateFailed chains had an invocation fault. Every later operation
	// is a no-op.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Chain is a sequence of dispatches sharing one execution context, usually
// the magics of one cell. The first invocation fault moves the chain to
// StateFailed for good. A Chain must not be used concurrently.
type Chain struct {
	d     *Dispatcher
	ctx   *execctx.ExecutionContext
	state State
	err   error

	// posts are the handlers with a Post function that ran, in order.
	posts []*handler.Handler
}

// State returns the chain state.
func (c *Chain) State() State {
	return c.state
}

// Failed reports whether the chain is terminated.
func (c *Chain) Failed() bool {
	return c.state == StateFailed
}

// Err returns the *InvocationError that terminated the chain, or nil.
func (c *Chain) Err() error {
	return c.err
}

// Context returns the execution context shared by the chain's magics.
func (c *Chain) Context() *execctx.ExecutionContext {
	return c.ctx
}

// Dispatch runs the magic kind/name with args.
func (c *Chain) Dispatch(ctx context.Context, kind handler.Kind, name string, args option.Args) handler.Result {
	return c.DispatchRequest(ctx, handler.Request{Kind: kind, Name: name, Args: args})
}

// DispatchRequest resolves, parses, binds and invokes req.
//
// A magic that does not resolve yields an error result carrying the
// "no such magic" text; the chain stays active. An invocation fault is
// logged, reported on the output with the magic's help and terminates the
// chain. On a terminated chain nothing runs and ErrChainTerminated is
// returned.
func (c *Chain) DispatchRequest(ctx context.Context, req handler.Request) handler.Result {
	d := c.d
	start := time.Now()

	if c.state == StateFailed {
		result := handler.Error(ErrChainTerminated)
		d.record(req.Key(), start, result)
		return result
	}

	ectx := c.ctx.WithContext(ctx)
	ectx.Kind = string(req.Kind)
	ectx.Name = req.Name
	ectx.Code = req.Code

	if !d.runPreHooks(&req, ectx) {
		result := handler.Error(fmt.Errorf("%w: %s", ErrCancelled, req.Key()))
		if reason := ectx.GetDataString(hook.FilterReasonKey); reason != "" {
			ectx.DeleteData(hook.FilterReasonKey)
			result = result.WithMessage(reason)
			ectx.Error(reason)
		}
		d.record(req.Key(), start, result)
		return result
	}

	var result handler.Result
	e, err := d.registry.lookup(req.Kind, req.Name)
	if err != nil {
		msg := d.Help(req.Kind, req.Name, 0)
		ectx.Error(msg)
		result = handler.Error(err).WithMessage(msg)
	} else {
		result = c.invoke(e, req)
	}

	d.runPostHooks(&req, ectx, &result)
	d.record(req.Key(), start, result)
	return result
}

// PostProcess passes value through the Post functions of the handlers that
// ran on the chain, last handler first.
func (c *Chain) PostProcess(value any) any {
	if c.state == StateFailed {
		return value
	}
	for i := len(c.posts) - 1; i >= 0; i-- {
		value = c.posts[i].Post(c.ctx, value)
	}
	return value
}

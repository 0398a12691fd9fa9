package dispatcher

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/option"
)

// FallbackKey is the result data key set when a handler received the raw
// argument string because the parsed arguments did not fit.
const FallbackKey = "fallback"

// bindKind tags the outcome of binding arguments to a handler.
type bindKind uint8

const (
	bindOK bindKind = iota
	bindMismatch
)

// binding is the outcome of binding parsed arguments to a handler's
// calling convention. A mismatch carries the call that was attempted.
type binding struct {
	kind bindKind
	call handler.Call
	err  error
}

// bind fits positional arguments to conv. Handlers that take nothing get
// nothing, whatever was typed.
func bind(h *handler.Handler, conv handler.Convention, positional []string, options map[string]any, raw string) binding {
	call := handler.Call{Options: options, Raw: raw}

	switch {
	case conv.Kind == handler.ConvRaw:
		call.Args = []string{raw}
		return binding{kind: bindOK, call: call}
	case conv.TakesNothing():
		call.Args = []string{}
		return binding{kind: bindOK, call: call}
	case !conv.Accepts(len(positional)):
		call.Args = positional
		return binding{
			kind: bindMismatch,
			call: call,
			err:  fmt.Errorf("%w: %s takes %s, got %d", ErrArgumentMismatch, h.Key(), conv, len(positional)),
		}
	}

	args := make([]string, 0, len(h.Params))
	args = append(args, positional...)
	if conv.Kind == handler.ConvFixed {
		for _, p := range h.Params[len(positional):] {
			args = append(args, p.Default)
		}
	}
	call.Args = args
	return binding{kind: bindOK, call: call}
}

// fallback rebinds a mismatch to the single raw argument string with every
// option at its default. It applies once, and only to handlers that accept
// exactly one positional argument.
func fallback(h *handler.Handler, conv handler.Convention, mismatch binding, raw string) binding {
	if !conv.Accepts(1) {
		return mismatch
	}
	defaults, err := option.Parse(h.Options, nil)
	if err != nil {
		return mismatch
	}
	b := bind(h, conv, []string{raw}, defaults.Options, raw)
	if b.kind != bindOK {
		return mismatch
	}
	b.call.Fallback = true
	return b
}

// invoke parses the request's arguments, binds them and calls the handler.
func (c *Chain) invoke(e *entry, req handler.Request) handler.Result {
	d := c.d
	h := e.handler
	raw := req.Args.String()

	var b binding
	if e.conv.Kind == handler.ConvRaw {
		defaults, err := option.Parse(h.Options, nil)
		if err != nil {
			return c.fail(h, handler.Call{Args: []string{raw}, Raw: raw}, err)
		}
		b = bind(h, e.conv, nil, defaults.Options, raw)
	} else {
		tokens := req.Args.Split(d.config.SplitMode)
		parsed, err := option.Parse(h.Options, tokens)
		if err != nil {
			return c.fail(h, handler.Call{Args: tokens, Raw: raw}, err)
		}
		b = bind(h, e.conv, parsed.Positional, parsed.Options, raw)
		if b.kind == bindMismatch {
			b = fallback(h, e.conv, b, raw)
		}
	}

	if b.kind == bindMismatch {
		return c.fail(h, b.call, b.err)
	}
	if b.call.Fallback && d.metrics != nil {
		d.metrics.RecordFallback(h.Key().String())
	}

	value, err := d.call(h, c.ctx, b.call)
	if err != nil {
		return c.fail(h, b.call, err)
	}
	if h.Post != nil {
		c.posts = append(c.posts, h)
	}

	result := handler.Success(value)
	if b.call.Fallback {
		result = result.WithData(FallbackKey, true)
	}
	return result
}

// call runs the handler, turning a panic into ErrHandlerPanic when panic
// recovery is enabled.
func (d *Dispatcher) call(h *handler.Handler, ctx *execctx.ExecutionContext, call handler.Call) (value any, err error) {
	if d.config.RecoverFromPanic {
		defer func() {
			if r := recover(); r != nil {
				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)

				d.Logger().WithField("stack", string(stack[:n])).Debugf("recovered panic in magic %s", h.Key())
				err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)

				if d.metrics != nil {
					d.metrics.RecordPanic(h.Key().String())
				}
			}
		}()
	}

	return h.Fn(ctx, call)
}

// fail reports an invocation fault and terminates the chain.
func (c *Chain) fail(h *handler.Handler, call handler.Call, err error) handler.Result {
	ierr := &InvocationError{
		Kind:    h.Kind,
		Name:    h.Name,
		Args:    call.Args,
		Options: call.Options,
		Err:     err,
	}

	c.d.Logger().WithFields(logrus.Fields{
		"kind":   string(h.Kind),
		"name":   h.Name,
		"args":   call.Args,
		"kwargs": call.Options,
	}).WithError(err).Error("magic invocation failed")

	msg := ierr.Message()
	help := c.d.Help(h.Kind, h.Name, 0)
	c.ctx.Error(msg)
	c.ctx.Error(help)

	c.state = StateFailed
	c.err = ierr
	return handler.Error(ierr).WithMessage(msg + "\n" + help)
}

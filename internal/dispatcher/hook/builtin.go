package hook

import (
	"fmt"
	"time"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
)

// Priorities of the built-in hooks.
const (
	PriorityAudit  = 1000
	PriorityFilter = 900
	PriorityTiming = 800
)

// FilterReasonKey is the context data key a FilterHook stores its reason under.
const FilterReasonKey = "filter_reason"

// Logger receives hook records as a message and alternating keys and values.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// AuditHook traces every dispatch at debug level. Faults are logged by
// the dispatcher itself, so failed dispatches stay at debug here too.
// It wraps all other hooks.
type AuditHook struct {
	logger Logger
}

// NewAuditHook returns an AuditHook writing to logger. A nil logger
// makes the hook a no-op.
func NewAuditHook(logger Logger) *AuditHook {
	return &AuditHook{logger: logger}
}

func (h *AuditHook) Name() string  { return "audit" }
func (h *AuditHook) Priority() int { return PriorityAudit }

func auditFields(req *handler.Request, extra ...interface{}) []interface{} {
	return append([]interface{}{"kind", string(req.Kind), "magic", req.Name}, extra...)
}

// PreDispatch implements PreDispatchHook.
func (h *AuditHook) PreDispatch(req *handler.Request, _ *execctx.ExecutionContext) bool {
	if h.logger != nil {
		h.logger.Debug("dispatch start", auditFields(req, "args", req.Args.String())...)
	}
	return true
}

// PostDispatch implements PostDispatchHook.
func (h *AuditHook) PostDispatch(req *handler.Request, _ *execctx.ExecutionContext, result *handler.Result) {
	switch {
	case h.logger == nil:
	case result.IsError():
		h.logger.Debug("dispatch failed", auditFields(req, "error", result.Error)...)
	default:
		h.logger.Debug("dispatch complete", auditFields(req, "status", result.Status.String())...)
	}
}

// FilterHook refuses a fixed set of magics.
type FilterHook struct {
	denied map[handler.Key]struct{}
}

// NewFilterHook creates a filter hook refusing the given magics.
func NewFilterHook(denied ...handler.Key) *FilterHook {
	h := &FilterHook{denied: make(map[handler.Key]struct{}, len(denied))}
	for _, key := range denied {
		h.denied[handler.KeyOf(key.Kind, key.Name)] = struct{}{}
	}
	return h
}

func (h *FilterHook) Name() string  { return "filter" }
func (h *FilterHook) Priority() int { return PriorityFilter }

// Denies reports whether the magic identified by key is refused.
func (h *FilterHook) Denies(key handler.Key) bool {
	_, ok := h.denied[handler.KeyOf(key.Kind, key.Name)]
	return ok
}

// PreDispatch cancels refused magics and records why on the context.
func (h *FilterHook) PreDispatch(req *handler.Request, ctx *execctx.ExecutionContext) bool {
	if !h.Denies(req.Key()) {
		return true
	}
	ctx.SetData(FilterReasonKey, fmt.Sprintf("magic %s is disabled", req.Key()))
	return false
}

// TimingHook reports how long each magic took, from its pre hook to its
// post hook. It runs after the filter, so refused magics are not timed.
type TimingHook struct {
	callback func(magic string, duration time.Duration)
}

const timingStartKey = "_timing_start"

// NewTimingHook returns a TimingHook calling report with the magic key
// and its duration.
func NewTimingHook(report func(magic string, duration time.Duration)) *TimingHook {
	return &TimingHook{callback: report}
}

func (h *TimingHook) Name() string  { return "timing" }
func (h *TimingHook) Priority() int { return PriorityTiming }

// PreDispatch implements PreDispatchHook.
func (h *TimingHook) PreDispatch(_ *handler.Request, ctx *execctx.ExecutionContext) bool {
	ctx.SetData(timingStartKey, time.Now())
	return true
}

// PostDispatch implements PostDispatchHook.
func (h *TimingHook) PostDispatch(req *handler.Request, ctx *execctx.ExecutionContext, _ *handler.Result) {
	v, ok := ctx.GetData(timingStartKey)
	if !ok {
		return
	}
	ctx.DeleteData(timingStartKey)
	if start, ok := v.(time.Time); ok && h.callback != nil {
		h.callback(req.Key().String(), time.Since(start))
	}
}

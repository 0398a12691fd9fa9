package dispatcher

import (
	"github.com/sirupsen/logrus"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/dispatcher/hook"
)

// Re-export hook package types for convenience.
type (
	// Hook is the base interface for named, prioritized hooks.
	Hook = hook.Hook

	// HookManager manages hooks with priority ordering.
	HookManager = hook.Manager
)

// NewHookManager creates a new hook manager.
func NewHookManager() *hook.Manager {
	return hook.NewManager()
}

// HookManager returns the hook manager (may be nil).
func (d *Dispatcher) HookManager() *hook.Manager {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hookManager
}

// SetHookManager sets the hook manager.
func (d *Dispatcher) SetHookManager(manager *hook.Manager) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hookManager = manager
}

// EnableHookManager creates and sets a new hook manager if not already set.
// Panicking hooks of a manager created here are logged and counted as
// panics of the magic being dispatched.
func (d *Dispatcher) EnableHookManager() *hook.Manager {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.hookManager == nil {
		d.hookManager = hook.NewManager()
		d.hookManager.OnPanic(d.hookPanicked)
	}
	return d.hookManager
}

func (d *Dispatcher) hookPanicked(name string, req *handler.Request, value any) {
	d.Logger().WithFields(logrus.Fields{
		"hook":  name,
		"kind":  string(req.Kind),
		"name":  req.Name,
		"panic": value,
	}).Error("dispatch hook panicked")
	if d.metrics != nil {
		d.metrics.RecordPanic(req.Key().String())
	}
}

// runPreHooks runs all pre-dispatch hooks.
// Returns false if any hook cancels the dispatch.
func (d *Dispatcher) runPreHooks(req *handler.Request, ctx *execctx.ExecutionContext) bool {
	manager := d.HookManager()
	if manager == nil {
		return true
	}
	return manager.RunPreDispatch(req, ctx)
}

// runPostHooks runs all post-dispatch hooks.
func (d *Dispatcher) runPostHooks(req *handler.Request, ctx *execctx.ExecutionContext, result *handler.Result) {
	if manager := d.HookManager(); manager != nil {
		manager.RunPostDispatch(req, ctx, result)
	}
}

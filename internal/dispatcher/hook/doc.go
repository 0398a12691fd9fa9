// Package hook provides extensible pre/post dispatch hooks for the dispatcher.
//
// Hooks intercept magic dispatch for auditing, validation, filtering and
// timing. They are ordered by priority.
//
// # Hook Types
//
//   - PreDispatchHook: Called before a magic is dispatched. Can cancel it.
//   - PostDispatchHook: Called after dispatch completes. Can inspect/modify results.
//
// Hooks implement the base Hook interface with Name() and Priority() methods
// for identification and ordering.
//
// # Priority System
//
//   - Pre-hooks: Higher priority runs first
//   - Post-hooks: Lower priority runs first, higher runs last (to see final results)
//   - Equal priorities run in registration order
//
// # Panics
//
// A panicking pre-hook cancels the dispatch and its panic becomes the
// cancellation reason shown to the user. A panicking post-hook is skipped.
// Both are reported to the function set with Manager.OnPanic.
//
// # Built-in Hooks
//
//   - AuditHook: Logs every dispatch through a key/value Logger
//   - FilterHook: Refuses disabled magics
//   - ValidationHook: Custom validation before dispatch
//   - TimingHook: Measures magic execution time
//   - LoggingHook: Simple printf-style logging
//   - ResultModifierHook: Rewrites results after dispatch
//
// # Usage Example
//
//	manager := hook.NewManager()
//	manager.Register(hook.NewAuditHook(logger))
//	manager.RegisterPre(hook.NewFilterHook(handler.KeyOf(handler.KindLine, "env")))
//
//	if manager.RunPreDispatch(&req, ctx) {
//	    // Dispatch the magic...
//	    manager.RunPostDispatch(&req, ctx, &result)
//	}
//
// # Thread Safety
//
// Registration may happen while hooks run; each run works on a copy of the
// hook lists.
package hook

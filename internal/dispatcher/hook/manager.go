package hook

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
)

// PanicFunc is told about a hook that panicked.
type PanicFunc func(hook string, req *handler.Request, value any)

// entry is a registered hook with the position it was registered at.
// Hooks of equal priority run in registration order.
type entry[H Hook] struct {
	hook H
	seq  uint64
}

// Manager runs the pre and post hooks of every dispatch.
//
// Pre hooks run highest priority first and the first one returning false
// cancels the dispatch. Post hooks run lowest priority first so that high
// priority hooks see the final result. A hook that panics is isolated: a
// panicking pre hook cancels the dispatch, a panicking post hook is
// skipped. Either way the panic is reported to the PanicFunc.
type Manager struct {
	mu      sync.RWMutex
	pre     []entry[PreDispatchHook]
	post    []entry[PostDispatchHook]
	seq     uint64
	onPanic PanicFunc
}

// NewManager creates an empty hook manager.
func NewManager() *Manager {
	return &Manager{}
}

// OnPanic sets the function told about panicking hooks.
func (m *Manager) OnPanic(fn PanicFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPanic = fn
}

// RegisterPre adds a pre-dispatch hook, replacing one of the same name.
func (m *Manager) RegisterPre(h PreDispatchHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pre = insert(m.pre, h, m.next())
	sort.SliceStable(m.pre, func(i, j int) bool {
		return before(m.pre[i], m.pre[j], true)
	})
}

// RegisterPost adds a post-dispatch hook, replacing one of the same name.
func (m *Manager) RegisterPost(h PostDispatchHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.post = insert(m.post, h, m.next())
	sort.SliceStable(m.post, func(i, j int) bool {
		return before(m.post[i], m.post[j], false)
	})
}

// Register adds h as a pre hook, a post hook or both, depending on the
// interfaces it implements.
func (m *Manager) Register(h Hook) {
	if pre, ok := h.(PreDispatchHook); ok {
		m.RegisterPre(pre)
	}
	if post, ok := h.(PostDispatchHook); ok {
		m.RegisterPost(post)
	}
}

func (m *Manager) next() uint64 {
	m.seq++
	return m.seq
}

// insert replaces the hook named like h, keeping its position in the
// registration order, or appends h.
func insert[H Hook](entries []entry[H], h H, seq uint64) []entry[H] {
	for i, e := range entries {
		if e.hook.Name() == h.Name() {
			entries[i].hook = h
			return entries
		}
	}
	return append(entries, entry[H]{hook: h, seq: seq})
}

func before[H Hook](a, b entry[H], descending bool) bool {
	pa, pb := a.hook.Priority(), b.hook.Priority()
	if pa != pb {
		if descending {
			return pa > pb
		}
		return pa < pb
	}
	return a.seq < b.seq
}

func remove[H Hook](entries []entry[H], name string) ([]entry[H], bool) {
	for i, e := range entries {
		if e.hook.Name() == name {
			return append(entries[:i], entries[i+1:]...), true
		}
	}
	return entries, false
}

// UnregisterPre removes the pre hook called name.
func (m *Manager) UnregisterPre(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ok bool
	m.pre, ok = remove(m.pre, name)
	return ok
}

// UnregisterPost removes the post hook called name.
func (m *Manager) UnregisterPost(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ok bool
	m.post, ok = remove(m.post, name)
	return ok
}

// Unregister removes the hooks called name.
func (m *Manager) Unregister(name string) bool {
	pre := m.UnregisterPre(name)
	post := m.UnregisterPost(name)
	return pre || post
}

// RunPreDispatch runs the pre hooks and reports whether the dispatch may
// proceed.
func (m *Manager) RunPreDispatch(req *handler.Request, ctx *execctx.ExecutionContext) bool {
	m.mu.RLock()
	hooks := append([]entry[PreDispatchHook](nil), m.pre...)
	onPanic := m.onPanic
	m.mu.RUnlock()

	for _, e := range hooks {
		if !runPre(e.hook, req, ctx, onPanic) {
			return false
		}
	}
	return true
}

func runPre(h PreDispatchHook, req *handler.Request, ctx *execctx.ExecutionContext, onPanic PanicFunc) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			if ctx != nil {
				ctx.SetData(FilterReasonKey, fmt.Sprintf("hook %s failed: %v", h.Name(), r))
			}
			if onPanic != nil {
				onPanic(h.Name(), req, r)
			}
		}
	}()
	return h.PreDispatch(req, ctx)
}

// RunPostDispatch runs the post hooks.
func (m *Manager) RunPostDispatch(req *handler.Request, ctx *execctx.ExecutionContext, result *handler.Result) {
	m.mu.RLock()
	hooks := append([]entry[PostDispatchHook](nil), m.post...)
	onPanic := m.onPanic
	m.mu.RUnlock()

	for _, e := range hooks {
		runPost(e.hook, req, ctx, result, onPanic)
	}
}

func runPost(h PostDispatchHook, req *handler.Request, ctx *execctx.ExecutionContext, result *handler.Result, onPanic PanicFunc) {
	defer func() {
		if r := recover(); r != nil && onPanic != nil {
			onPanic(h.Name(), req, r)
		}
	}()
	h.PostDispatch(req, ctx, result)
}

// PreHookCount returns the number of pre hooks.
func (m *Manager) PreHookCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pre)
}

// PostHookCount returns the number of post hooks.
func (m *Manager) PostHookCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.post)
}

// PreHookNames returns the pre hook names in the order they run.
func (m *Manager) PreHookNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return names(m.pre)
}

// PostHookNames returns the post hook names in the order they run.
func (m *Manager) PostHookNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return names(m.post)
}

func names[H Hook](entries []entry[H]) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.hook.Name()
	}
	return out
}

// Clear removes every hook.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pre = nil
	m.post = nil
}

package dispatcher

import (
	"sort"
	"sync"

	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/docfmt"
)

// entry is a registered handler with the values derived from it once at
// registration.
type entry struct {
	handler *handler.Handler
	conv    handler.Convention
	// doc is the trimmed documentation including the option table.
	doc string
}

// Registry maps (kind, name) pairs to handlers.
type Registry struct {
	mu      sync.RWMutex
	entries map[handler.Key]*entry
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[handler.Key]*entry),
	}
}

// Register adds a handler. A handler registered under an existing key
// replaces the previous one. The registry keeps its own copy of h.
func (r *Registry) Register(h *handler.Handler) error {
	if err := h.Validate(); err != nil {
		return err
	}

	c := h.Clone()
	c.Kind = c.Kind.Normalize()
	e := &entry{
		handler: c,
		conv:    c.Convention(),
		doc:     docfmt.Trim(c.Documentation()),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[c.Key()] = e
	return nil
}

// Unregister removes the handler for kind and name.
func (r *Registry) Unregister(kind handler.Kind, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := handler.KeyOf(kind, name)
	if _, ok := r.entries[key]; !ok {
		return false
	}
	delete(r.entries, key)
	return true
}

// Resolve returns the handler for kind and name. Sticky resolves as cell.
// Lookup is exact and case-sensitive.
func (r *Registry) Resolve(kind handler.Kind, name string) (*handler.Handler, error) {
	e, err := r.lookup(kind, name)
	if err != nil {
		return nil, err
	}
	return e.handler, nil
}

func (r *Registry) lookup(kind handler.Kind, name string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[handler.KeyOf(kind, name)]
	if !ok {
		return nil, &NotFoundError{Kind: kind.Normalize(), Name: name}
	}
	return e, nil
}

// Has returns true if a handler is registered for kind and name.
func (r *Registry) Has(kind handler.Kind, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[handler.KeyOf(kind, name)]
	return ok
}

// List returns the sorted names of the handlers of kind.
func (r *Registry) List(kind handler.Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kind = kind.Normalize()
	names := make([]string, 0, len(r.entries))
	for key := range r.entries {
		if key.Kind == kind {
			names = append(names, key.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes all registered handlers.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[handler.Key]*entry)
}

// Package evaluator defines the interpreter collaborator that magic handlers
// delegate code execution, variable access and completions to.
package evaluator

import (
	"errors"
	"sort"
	"sync"
)

// ErrNoEvaluator indicates an operation needs an evaluator but none is set.
var ErrNoEvaluator = errors.New("evaluator: no evaluator configured")

// Evaluator executes code for a session.
// Implementations are used by one session at a time.
type Evaluator interface {
	// Evaluate runs code and returns the value it produced (nil if none).
	Evaluate(code string) (any, error)

	// Environment returns the mutable variable environment.
	Environment() Environment
}

// Environment is the variable namespace of an evaluator.
type Environment interface {
	Get(name string) (any, bool)
	Set(name string, value any) error
	Delete(name string)
	// Names returns the variable names in sorted order.
	Names() []string
	// Clear removes every user variable.
	Clear()
}

// CompletionProvider is implemented by evaluators that can complete code.
type CompletionProvider interface {
	GetCompletions(info Info) []string
}

// HelpProvider is implemented by evaluators that can describe objects.
type HelpProvider interface {
	HelpOn(info Info, level int) (string, bool)
}

// MapEnvironment is an Environment backed by a Go map.
type MapEnvironment struct {
	mu   sync.RWMutex
	vars map[string]any
}

// NewMapEnvironment creates an empty MapEnvironment.
func NewMapEnvironment() *MapEnvironment {
	return &MapEnvironment{vars: make(map[string]any)}
}

// Get implements Environment.
func (e *MapEnvironment) Get(name string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[name]
	return v, ok
}

// Set implements Environment.
func (e *MapEnvironment) Set(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = value
	return nil
}

// Delete implements Environment.
func (e *MapEnvironment) Delete(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.vars, name)
}

// Names implements Environment.
func (e *MapEnvironment) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear implements Environment.
func (e *MapEnvironment) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars = make(map[string]any)
}

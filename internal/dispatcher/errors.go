package dispatcher

import (
	"errors"
	"fmt"

	"github.com/dshills/magicshell/internal/dispatcher/handler"
)

// Dispatcher errors.
var (
	// ErrNotFound indicates no handler is registered for a kind and name.
	ErrNotFound = errors.New("dispatcher: no such magic")

	// ErrChainTerminated indicates a dispatch on a chain that already failed.
	ErrChainTerminated = errors.New("dispatcher: chain terminated")

	// ErrCancelled indicates the dispatch was cancelled by a hook.
	ErrCancelled = errors.New("dispatcher: magic cancelled by hook")

	// ErrHandlerPanic indicates the handler panicked.
	ErrHandlerPanic = errors.New("dispatcher: handler panic")

	// ErrArgumentMismatch indicates arguments that fit neither the
	// handler's parameters nor the raw-string fallback.
	ErrArgumentMismatch = errors.New("dispatcher: arguments do not fit the magic's parameters")
)

// NotFoundError reports a magic that does not resolve.
type NotFoundError struct {
	Kind handler.Kind
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dispatcher: no such magic %q for %ss", e.Name, e.Kind)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvocationError reports a magic that failed while being called.
type InvocationError struct {
	Kind handler.Kind
	Name string
	// Args and Options are the values the handler was called with.
	Args    []string
	Options map[string]any
	Err     error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("dispatcher: error in calling magic %q on %s: %v", e.Name, e.Kind, e.Err)
}

// Unwrap returns the cause.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Message renders the error the way it is shown to the user.
func (e *InvocationError) Message() string {
	args := e.Args
	if args == nil {
		args = []string{}
	}
	options := e.Options
	if options == nil {
		options = map[string]any{}
	}
	return fmt.Sprintf("Error in calling magic '%s' on %s:\n    %v\n    args: %q\n    kwargs: %v",
		e.Name, e.Kind, e.Err, args, options)
}

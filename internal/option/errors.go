package option

import (
	"errors"
	"fmt"
)

// Option errors.
var (
	// ErrUsage indicates the arguments do not match the declared options.
	ErrUsage = errors.New("option: usage error")

	// ErrHelpLine indicates a line is not a formatted option help line.
	ErrHelpLine = errors.New("option: not an option help line")
)

// UsageError reports arguments rejected by the synthesized parser.
type UsageError struct {
	// Args are the tokens that were parsed.
	Args []string
	// Err is the parser error.
	Err error
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return fmt.Sprintf("option: %v", e.Err)
}

// Unwrap returns the parser error.
func (e *UsageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUsage.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrAlreadyRunning indicates Run was called while a loop is active.
	ErrAlreadyRunning = errors.New("app: already running")

	// ErrShutdown indicates the application was shut down.
	ErrShutdown = errors.New("app: shut down")
)

// InitError reports the component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("app: initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// CellError reports a cell of a script that failed.
type CellError struct {
	// Line is the line of the script the cell starts on.
	Line int
	Err  error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell at line %d: %v", e.Line, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

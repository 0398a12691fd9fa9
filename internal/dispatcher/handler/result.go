package handler

import "errors"

// ResultStatus tells a successful dispatch from a failed one.
type ResultStatus uint8

const (
	// StatusOK means the magic ran and returned a value.
	StatusOK ResultStatus = iota
	// StatusError means the magic was not found, was cancelled or faulted.
	StatusError
)

var statusNames = [...]string{StatusOK: "ok", StatusError: "error"}

func (s ResultStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// errUnknown stands in for a nil error passed to Error.
var errUnknown = errors.New("unknown error")

// Result is what a dispatch produced. An OK result carries the magic's
// Value untouched; an error result carries Error and, when the user was
// told about it, the Message that was printed.
type Result struct {
	Status  ResultStatus
	Value   any
	Error   error
	Message string

	// Data carries dispatch details to hooks and metrics.
	Data map[string]any
}

// Success wraps the value a magic returned.
func Success(value any) Result {
	return Result{Status: StatusOK, Value: value}
}

// Error wraps a failed dispatch.
func Error(err error) Result {
	if err == nil {
		err = errUnknown
	}
	return Result{Status: StatusError, Error: err}
}

func (r Result) IsOK() bool    { return r.Status == StatusOK }
func (r Result) IsError() bool { return r.Status == StatusError }

// WithMessage returns r carrying msg.
func (r Result) WithMessage(msg string) Result {
	r.Message = msg
	return r
}

// WithData returns r with key set. r's own Data is left alone.
func (r Result) WithData(key string, value any) Result {
	data := make(map[string]any, len(r.Data)+1)
	for k, v := range r.Data {
		data[k] = v
	}
	data[key] = value
	r.Data = data
	return r
}

// GetData returns the value stored under key.
func (r Result) GetData(key string) (any, bool) {
	v, ok := r.Data[key]
	return v, ok
}

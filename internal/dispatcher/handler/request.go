package handler

import "github.com/dshills/magicshell/internal/option"

// Request is one magic invocation: the magic to run, its argument value
// and the code it applies to.
type Request struct {
	Kind Kind
	Name string
	Args option.Args

	// Code is the cell body for cell magics and the remaining code of the
	// cell for line magics.
	Code string
}

// NewRequest creates a request with raw argument text.
func NewRequest(kind Kind, name, args string) Request {
	return Request{Kind: kind, Name: name, Args: option.Raw(args)}
}

// Key returns the normalized key of the requested magic.
func (r Request) Key() Key {
	return KeyOf(r.Kind, r.Name)
}

// WithCode returns a copy of the request applying to code.
func (r Request) WithCode(code string) Request {
	r.Code = code
	return r
}

package handler

import "errors"

// Registration errors.
var (
	// ErrInvalidKind indicates a kind other than line, cell or sticky.
	ErrInvalidKind = errors.New("handler: invalid kind")

	// ErrEmptyName indicates a handler without a name.
	ErrEmptyName = errors.New("handler: empty name")

	// ErrNilFunc indicates a handler without a function.
	ErrNilFunc = errors.New("handler: nil function")

	// ErrRawWithParams indicates a raw handler that also declares parameters.
	ErrRawWithParams = errors.New("handler: raw handler cannot declare parameters")

	// ErrParamOrder indicates a required parameter after an optional one.
	ErrParamOrder = errors.New("handler: required parameter follows optional parameter")
)

package handler

import "fmt"

// ConventionKind tags how a handler takes its positional arguments.
type ConventionKind uint8

const (
	// ConvFixed takes between Required and Max positional arguments.
	ConvFixed ConventionKind = iota
	// ConvVariadic takes at least Required positional arguments.
	ConvVariadic
	// ConvRaw takes the unparsed argument text as its only argument.
	ConvRaw
)

// Convention is the calling convention of a handler, derived from its
// declared parameters once at registration.
type Convention struct {
	Kind     ConventionKind
	Required int
	// Max is the maximum number of positional arguments, -1 if unbounded.
	Max int
}

// Convention derives the calling convention of h.
func (h *Handler) Convention() Convention {
	if h.Raw {
		return Convention{Kind: ConvRaw, Required: 1, Max: 1}
	}
	required := 0
	for _, p := range h.Params {
		if !p.Optional {
			required++
		}
	}
	if h.Variadic {
		return Convention{Kind: ConvVariadic, Required: required, Max: -1}
	}
	return Convention{Kind: ConvFixed, Required: required, Max: len(h.Params)}
}

// TakesNothing reports whether the handler accepts no positional arguments.
func (c Convention) TakesNothing() bool {
	return c.Kind == ConvFixed && c.Max == 0
}

// Accepts reports whether n positional arguments fit the convention.
func (c Convention) Accepts(n int) bool {
	if n < c.Required {
		return false
	}
	return c.Max < 0 || n <= c.Max
}

// String describes the convention, e.g. "fixed(1..2)".
func (c Convention) String() string {
	switch c.Kind {
	case ConvRaw:
		return "raw"
	case ConvVariadic:
		return fmt.Sprintf("variadic(%d+)", c.Required)
	default:
		if c.Required == c.Max {
			return fmt.Sprintf("fixed(%d)", c.Max)
		}
		return fmt.Sprintf("fixed(%d..%d)", c.Required, c.Max)
	}
}

// Package handler provides the magic command handler type and dispatch results.
package handler

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/docfmt"
	"github.com/dshills/magicshell/internal/option"
)

// Kind is the kind of a magic command.
type Kind string

// Magic kinds.
const (
	// KindLine magics take the rest of their line as arguments.
	KindLine Kind = "line"
	// KindCell magics apply to the body of a whole cell.
	KindCell Kind = "cell"
	// KindSticky magics are cell magics that stay active for later cells.
	// They resolve exactly like cell magics.
	KindSticky Kind = "sticky"
)

// Normalize maps sticky onto cell.
func (k Kind) Normalize() Kind {
	if k == KindSticky {
		return KindCell
	}
	return k
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindLine, KindCell, KindSticky:
		return true
	default:
		return false
	}
}

// Key identifies a handler. Kind is always normalized.
type Key struct {
	Kind Kind
	Name string
}

// KeyOf builds a normalized key.
func KeyOf(kind Kind, name string) Key {
	return Key{Kind: kind.Normalize(), Name: name}
}

// String returns the conventional "<kind>_<name>" spelling.
func (k Key) String() string {
	return string(k.Kind) + "_" + k.Name
}

// Param declares one positional parameter of a handler.
type Param struct {
	Name     string
	Default  string
	Optional bool
}

// Required declares a parameter without default.
func Required(name string) Param {
	return Param{Name: name}
}

// Optional declares a parameter that falls back to def when not given.
func Optional(name, def string) Param {
	return Param{Name: name, Default: def, Optional: true}
}

// Func implements a magic command.
type Func func(ctx *execctx.ExecutionContext, call Call) (any, error)

// PostFunc post-processes the value the host evaluated after the magics of
// a cell ran.
type PostFunc func(ctx *execctx.ExecutionContext, value any) any

// Handler is a magic command bound to a kind and a name.
// A handler must not be modified once registered.
type Handler struct {
	Kind Kind
	Name string

	// Doc is the inline documentation, usually an indented raw string.
	Doc string

	// Params are the declared positional parameters.
	Params []Param
	// Variadic accepts any number of positional arguments past Params.
	Variadic bool
	// Raw passes the unparsed argument text as the only argument.
	Raw bool

	// Options are the declared options in declaration order.
	Options []*option.Spec

	Fn   Func
	Post PostFunc

	// Source is the file the handler is defined in, used for full help.
	Source string
}

// New creates a handler. Source defaults to the file fn is defined in.
func New(kind Kind, name string, fn Func) *Handler {
	return &Handler{
		Kind:   kind,
		Name:   name,
		Fn:     fn,
		Source: SourceOf(fn),
	}
}

// WithDoc sets the documentation.
func (h *Handler) WithDoc(doc string) *Handler {
	h.Doc = doc
	return h
}

// WithParams appends positional parameters.
func (h *Handler) WithParams(params ...Param) *Handler {
	h.Params = append(h.Params, params...)
	return h
}

// WithVariadic accepts extra positional arguments.
func (h *Handler) WithVariadic() *Handler {
	h.Variadic = true
	return h
}

// WithRaw passes the unparsed argument text as the only argument.
func (h *Handler) WithRaw() *Handler {
	h.Raw = true
	return h
}

// WithOption attaches an option. Malformed options are kept for the help
// text only.
func (h *Handler) WithOption(spec *option.Spec) *Handler {
	h.Options = append(h.Options, spec)
	return h
}

// WithPost sets the post-processing function.
func (h *Handler) WithPost(fn PostFunc) *Handler {
	h.Post = fn
	return h
}

// WithSource overrides the source file.
func (h *Handler) WithSource(path string) *Handler {
	h.Source = path
	return h
}

// Key returns the handler's normalized key.
func (h *Handler) Key() Key {
	return KeyOf(h.Kind, h.Name)
}

// Validate checks that the handler can be registered.
func (h *Handler) Validate() error {
	if !h.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, h.Kind)
	}
	if h.Name == "" {
		return ErrEmptyName
	}
	if h.Fn == nil {
		return fmt.Errorf("%w: %s", ErrNilFunc, h.Key())
	}
	if h.Raw && (len(h.Params) > 0 || h.Variadic) {
		return fmt.Errorf("%w: %s", ErrRawWithParams, h.Key())
	}
	optional := false
	for _, p := range h.Params {
		if p.Optional {
			optional = true
		} else if optional {
			return fmt.Errorf("%w: %s parameter %q", ErrParamOrder, h.Key(), p.Name)
		}
	}
	return nil
}

// Clone returns a copy that shares no slices with h.
func (h *Handler) Clone() *Handler {
	c := *h
	c.Params = append([]Param(nil), h.Params...)
	if h.Options != nil {
		c.Options = make([]*option.Spec, len(h.Options))
		for i, spec := range h.Options {
			c.Options[i] = spec.Clone()
		}
	}
	return &c
}

// Documentation returns the inline documentation followed by the option
// table, re-indented to the documentation's indentation. A handler with
// options but no documentation is documented by its option table alone.
func (h *Handler) Documentation() string {
	block := option.HelpBlock(h.Options)
	switch {
	case block == "":
		return h.Doc
	case h.Doc == "":
		return block
	default:
		return h.Doc + docfmt.Indent(h.Doc, block)
	}
}

// SourceOf returns the file a function is defined in, or "".
func SourceOf(fn any) string {
	if fn == nil {
		return ""
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	file, _ := f.FileLine(f.Entry())
	return file
}

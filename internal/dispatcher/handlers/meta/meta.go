// Package meta provides the magics that describe other magics.
package meta

import (
	"fmt"
	"strings"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/option"
)

// Magic names.
const (
	NameMagic = "magic"
	NameHelp  = "help"
)

// Registry is the view of the dispatcher the meta magics need.
type Registry interface {
	ListHandlers(kind handler.Kind) []string
	Help(kind handler.Kind, name string, level int) string
}

// Handlers returns %magic and %help bound to reg.
func Handlers(reg Registry) []*handler.Handler {
	return []*handler.Handler{
		handler.New(handler.KindLine, NameMagic, func(ctx *execctx.ExecutionContext, _ handler.Call) (any, error) {
			text := Listing(reg)
			ctx.Print(text)
			return text, nil
		}).WithDoc(`
            %magic - list the available line and cell magics
            `),
		handler.New(handler.KindLine, NameHelp, func(ctx *execctx.ExecutionContext, call handler.Call) (any, error) {
			kind, name := SplitRef(call.Arg(0))
			text := reg.Help(kind, name, call.Int("level"))
			ctx.Print(text)
			return text, nil
		}).
			WithParams(handler.Required("magic")).
			WithOption(option.New("-l", "--level").Int().Default(0).
				Help("1 shows the source of the magic")).
			WithDoc(`
            %help MAGIC - show the help of a magic

            Write %name for a line magic and %%name for a cell magic. A
            bare name is a line magic.
            `),
	}
}

// Listing formats the registered magics the way %magic prints them.
func Listing(reg Registry) string {
	var sb strings.Builder
	sb.WriteString("Available line magics:\n")
	sb.WriteString(prefixed("%", reg.ListHandlers(handler.KindLine)))
	sb.WriteString("\n\nAvailable cell magics:\n")
	sb.WriteString(prefixed("%%", reg.ListHandlers(handler.KindCell)))
	return sb.String()
}

func prefixed(prefix string, names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + n
	}
	return strings.Join(out, "  ")
}

// SplitRef reads "%%name" as a cell magic and "%name" or "name" as a
// line magic.
func SplitRef(ref string) (handler.Kind, string) {
	switch {
	case strings.HasPrefix(ref, "%%"):
		return handler.KindCell, ref[2:]
	case strings.HasPrefix(ref, "%"):
		return handler.KindLine, ref[1:]
	default:
		return handler.KindLine, ref
	}
}

// Ref is the inverse of SplitRef.
func Ref(kind handler.Kind, name string) string {
	if kind.Normalize() == handler.KindCell {
		return fmt.Sprintf("%%%%%s", name)
	}
	return "%" + name
}

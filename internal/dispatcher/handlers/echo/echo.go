// Package echo provides the %echo magic.
package echo

import (
	"strings"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/option"
)

// Name is the name of the echo magic.
const Name = "echo"

// Handlers returns %echo.
func Handlers() []*handler.Handler {
	return []*handler.Handler{
		handler.New(handler.KindLine, Name, echo).
			WithVariadic().
			WithOption(option.New("-u", "--upper").Bool().Default(false).
				Help("upper-case the words")).
			WithOption(option.New("-s", "--sep").Text().Default(" ").
				Help("separator placed between words")).
			WithDoc(`
            %echo [WORD...] - print the words
            `),
	}
}

func echo(ctx *execctx.ExecutionContext, call handler.Call) (any, error) {
	text := strings.Join(call.Args, call.Text("sep"))
	if call.Bool("upper") {
		text = strings.ToUpper(text)
	}
	ctx.Print(text)
	return text, nil
}

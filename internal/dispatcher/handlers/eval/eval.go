// Package eval provides the magics that run code through the evaluator.
package eval

import (
	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/evaluator"
)

// NameLua is the name of the line and cell evaluation magics.
const NameLua = "lua"

// Handlers returns %lua and %%lua.
func Handlers() []*handler.Handler {
	return []*handler.Handler{
		handler.New(handler.KindLine, NameLua, lineLua).
			WithRaw().
			WithDoc(`
            %lua CODE - evaluate one line of Lua

            The rest of the line is evaluated as is. A value the code
            produces is printed.

            Example:
                %lua string.rep("ab", 3)
            `),
		handler.New(handler.KindCell, NameLua, cellLua).
			WithDoc(`
            %%lua - evaluate the cell body as Lua

            The body is evaluated here instead of by the kernel, and its
            value becomes the magic's result.
            `),
	}
}

func lineLua(ctx *execctx.ExecutionContext, call handler.Call) (any, error) {
	ev, err := ctx.RequireEvaluator()
	if err != nil {
		return nil, err
	}
	value, err := ev.Evaluate(call.Raw)
	if err != nil {
		return nil, err
	}
	if value != nil {
		ctx.Print(evaluator.Format(value))
	}
	return value, nil
}

func cellLua(ctx *execctx.ExecutionContext, _ handler.Call) (any, error) {
	ev, err := ctx.RequireEvaluator()
	if err != nil {
		return nil, err
	}
	ctx.Evaluate = false
	return ev.Evaluate(ctx.Code)
}

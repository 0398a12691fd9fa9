// Package env provides the magics that read and change the evaluator's
// variables.
package env

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/evaluator"
	"github.com/dshills/magicshell/internal/option"
)

// Magic names.
const (
	NameSet   = "set"
	NameGet   = "get"
	NameEnv   = "env"
	NameReset = "reset"
)

// Handlers returns %set, %get, %env and %%reset.
func Handlers() []*handler.Handler {
	return []*handler.Handler{
		handler.New(handler.KindLine, NameSet, set).
			WithParams(handler.Required("name"), handler.Required("value")).
			WithVariadic().
			WithOption(option.New("-e", "--eval").Bool().Default(false).
				Help("evaluate VALUE and store the result")).
			WithDoc(`
            %set NAME VALUE... - set a variable

            The words after NAME are joined with single spaces and stored
            as a string unless --eval is given.
            `),
		handler.New(handler.KindLine, NameGet, get).
			WithParams(handler.Required("name")).
			WithDoc(`
            %get NAME - print a variable
            `),
		handler.New(handler.KindLine, NameEnv, list).
			WithOption(option.New("-j", "--json").Bool().Default(false).
				Help("print the variables and their values as JSON")).
			WithDoc(`
            %env - list the variables
            `),
		handler.New(handler.KindCell, NameReset, reset).
			WithDoc(`
            %%reset - remove every variable before running the cell
            `),
	}
}

func set(ctx *execctx.ExecutionContext, call handler.Call) (any, error) {
	ev, err := ctx.RequireEvaluator()
	if err != nil {
		return nil, err
	}

	name := call.Arg(0)
	var value any = call.Rest(1)
	if call.Bool("eval") {
		value, err = ev.Evaluate(call.Rest(1))
		if err != nil {
			return nil, err
		}
	}
	if err := ev.Environment().Set(name, value); err != nil {
		return nil, err
	}
	return nil, nil
}

func get(ctx *execctx.ExecutionContext, call handler.Call) (any, error) {
	ev, err := ctx.RequireEvaluator()
	if err != nil {
		return nil, err
	}

	name := call.Arg(0)
	value, ok := ev.Environment().Get(name)
	if !ok {
		return nil, fmt.Errorf("no variable named %q", name)
	}
	ctx.Print(evaluator.Format(value))
	return value, nil
}

func list(ctx *execctx.ExecutionContext, call handler.Call) (any, error) {
	ev, err := ctx.RequireEvaluator()
	if err != nil {
		return nil, err
	}

	environment := ev.Environment()
	names := environment.Names()
	if !call.Bool("json") {
		ctx.Print(strings.Join(names, "\n"))
		return names, nil
	}

	doc, err := EnvJSON(environment)
	if err != nil {
		return nil, err
	}
	ctx.Print(doc)
	return doc, nil
}

// EnvJSON renders the variables of environment as one JSON object.
func EnvJSON(environment evaluator.Environment) (string, error) {
	doc := "{}"
	for _, name := range environment.Names() {
		value, ok := environment.Get(name)
		if !ok {
			continue
		}
		var err error
		doc, err = sjson.Set(doc, escapePath(name), value)
		if err != nil {
			return "", fmt.Errorf("encoding %s: %w", name, err)
		}
	}
	return doc, nil
}

// escapePath quotes the characters sjson treats as path syntax.
func escapePath(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func reset(ctx *execctx.ExecutionContext, _ handler.Call) (any, error) {
	ev, err := ctx.RequireEvaluator()
	if err != nil {
		return nil, err
	}
	ev.Environment().Clear()
	return nil, nil
}

// Package handlers collects the builtin magics.
package handlers

import (
	"github.com/dshills/magicshell/internal/dispatcher"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/dispatcher/handlers/echo"
	"github.com/dshills/magicshell/internal/dispatcher/handlers/env"
	"github.com/dshills/magicshell/internal/dispatcher/handlers/eval"
	"github.com/dshills/magicshell/internal/dispatcher/handlers/meta"
	"github.com/dshills/magicshell/internal/dispatcher/handlers/timing"
)

// Builtins returns every builtin magic. The meta magics list and describe
// the magics registered on d.
func Builtins(d *dispatcher.Dispatcher) []*handler.Handler {
	var all []*handler.Handler
	all = append(all, eval.Handlers()...)
	all = append(all, env.Handlers()...)
	all = append(all, meta.Handlers(d)...)
	all = append(all, echo.Handlers()...)
	all = append(all, timing.Handlers()...)
	return all
}

// RegisterBuiltins registers every builtin magic on d.
func RegisterBuiltins(d *dispatcher.Dispatcher) error {
	for _, h := range Builtins(d) {
		if err := d.Register(h); err != nil {
			return err
		}
	}
	return nil
}

// Package timing provides the %%time magic.
package timing

import (
	"fmt"
	"time"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
)

// Name is the name of the timing magic.
const Name = "time"

// startKey holds the time the magic ran.
const startKey = "_time_start"

// Handlers returns %%time.
func Handlers() []*handler.Handler {
	return []*handler.Handler{
		handler.New(handler.KindCell, Name, start).
			WithPost(report).
			WithDoc(`
            %%time - print how long the cell took to run
            `),
	}
}

// now is replaced in tests.
var now = time.Now

func start(ctx *execctx.ExecutionContext, _ handler.Call) (any, error) {
	ctx.SetData(startKey, now())
	return nil, nil
}

func report(ctx *execctx.ExecutionContext, value any) any {
	v, ok := ctx.GetData(startKey)
	if !ok {
		return value
	}
	ctx.DeleteData(startKey)
	if began, ok := v.(time.Time); ok {
		ctx.Print(fmt.Sprintf("Time: %s", now().Sub(began)))
	}
	return value
}

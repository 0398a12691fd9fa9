package app

import (
	"context"
	"errors"
	"io"
	"os"
)

// Run executes the cells read from r until r is exhausted or ctx is done.
// When interactive is set it prints the banner and prompts. Errors of
// single cells are reported by the kernel and do not stop the loop.
func (app *Application) Run(ctx context.Context, r io.Reader, interactive bool) error {
	if err := app.start(); err != nil {
		return err
	}
	defer app.running.Store(false)

	cr := newCellReader(r, false)
	if interactive {
		app.host.Print(app.kernel.Banner())
		cr.prompt = app.prompt
	}

	return app.loop(ctx, cr, func(line int, err error) error {
		return nil
	})
}

// RunScript executes the file at path. Cells are separated by blank lines
// and the first failing cell stops the script.
func (app *Application) RunScript(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return app.RunReader(ctx, f)
}

// RunReader executes a script read from r. See RunScript.
func (app *Application) RunReader(ctx context.Context, r io.Reader) error {
	if err := app.start(); err != nil {
		return err
	}
	defer app.running.Store(false)

	return app.loop(ctx, newCellReader(r, true), func(line int, err error) error {
		return &CellError{Line: line, Err: err}
	})
}

type cellResult struct {
	cell string
	line int
	err  error
}

// loop reads cells on a goroutine of its own so that a cancelled ctx ends
// the loop even while a read blocks. onError decides whether a failed cell
// stops the loop.
func (app *Application) loop(ctx context.Context, cr *cellReader, onError func(line int, err error) error) error {
	cells := make(chan cellResult)
	next := make(chan struct{})
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(cells)
		for {
			cell, line, err := cr.Next()
			select {
			case cells <- cellResult{cell: cell, line: line, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
			select {
			case <-next:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-cells:
			if errors.Is(res.err, io.EOF) {
				return nil
			}
			if res.err != nil {
				return res.err
			}
			if _, err := app.kernel.Execute(ctx, res.cell); err != nil {
				if stop := onError(res.line, err); stop != nil {
					return stop
				}
			}
			next <- struct{}{}
		}
	}
}

func (app *Application) prompt(first bool) {
	text := app.config.Kernel.Prompt
	if !first {
		text = app.config.Kernel.ContinuationPrompt
	}
	_, _ = io.WriteString(app.host.Writer(), text)
}

func (app *Application) start() error {
	if app.closed.Load() {
		return ErrShutdown
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	return nil
}

// Package kernel runs user cells: it splits them into magics and code,
// dispatches the magics on one chain and hands the rest to the evaluator.
package kernel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/magicshell/internal/dispatcher"
	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/dispatcher/handlers/meta"
	"github.com/dshills/magicshell/internal/evaluator"
	"github.com/dshills/magicshell/internal/option"
)

// Caller is implemented by evaluators that can call a function by name.
type Caller interface {
	Call(name string, args ...any) (any, error)
}

// Kernel is one interactive session. Execute calls are serialized.
type Kernel struct {
	mu sync.Mutex

	d   *dispatcher.Dispatcher
	ev  evaluator.Evaluator
	out execctx.OutputInterface

	logger  logrus.FieldLogger
	session string

	// sticky are the %%% magics applied to every cell, in the order they
	// were added.
	sticky []magicLine
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the logger. The session id is attached to it.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(k *Kernel) {
		k.logger = logger
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(k *Kernel) {
		k.session = id
	}
}

// New creates a kernel dispatching on d and evaluating with ev. The
// dispatcher is pointed at ev and out.
func New(d *dispatcher.Dispatcher, ev evaluator.Evaluator, out execctx.OutputInterface, opts ...Option) *Kernel {
	k := &Kernel{
		d:       d,
		ev:      ev,
		out:     out,
		session: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.logger == nil {
		k.logger = d.Logger()
	}
	k.logger = k.logger.WithField("session", k.session)

	d.SetEvaluator(ev)
	d.SetOutput(out)
	return k
}

// Session returns the session id.
func (k *Kernel) Session() string {
	return k.session
}

// Dispatcher returns the kernel's dispatcher.
func (k *Kernel) Dispatcher() *dispatcher.Dispatcher {
	return k.d
}

// Banner is the text shown when an interactive session starts.
func (k *Kernel) Banner() string {
	return fmt.Sprintf("magicshell %s\nType %%magic to list the magics and ?name for help.", k.session)
}

// Sticky returns the active sticky magics as "%%name args" lines.
func (k *Kernel) Sticky() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, len(k.sticky))
	for i, m := range k.sticky {
		out[i] = strings.TrimSpace(meta.Ref(handler.KindCell, m.Name) + " " + m.Args)
	}
	return out
}

// Execute runs one cell and returns its value.
//
// Line magics run first, then the sticky magics, then the cell magic.
// They share one chain; an invocation fault stops the cell and its error
// is returned. Unless a magic cleared ExecutionContext.Evaluate, the code
// left over is evaluated. The value is passed through the Post functions
// of the magics that ran and printed when it is not nil. A cell that only
// toggles sticky magics runs nothing else.
func (k *Kernel) Execute(ctx context.Context, cell string) (any, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if target, level, ok := helpRequest(cell); ok {
		text := k.help(target, level)
		k.print(text)
		return text, nil
	}

	p := parseCell(cell)
	for _, m := range p.Sticky {
		k.toggleSticky(m)
	}
	if len(p.Sticky) > 0 && len(p.Line) == 0 && p.Cell == nil && strings.TrimSpace(p.Code) == "" {
		return nil, nil
	}

	chain := k.d.Chain()
	code := p.Code

	var (
		value any
		skip  bool
	)
	run := func(m magicLine, kind handler.Kind) bool {
		req := handler.Request{Kind: kind, Name: m.Name, Args: option.Raw(m.Args), Code: code}
		result := chain.DispatchRequest(ctx, req)
		if chain.Failed() {
			return false
		}
		code = chain.Context().Code
		switch {
		case kind == handler.KindLine:
		case result.IsOK():
			value = result.Value
		case kind == handler.KindCell:
			// The body of a cell magic that did not run is not code.
			skip = true
		}
		return true
	}

	for _, m := range p.Line {
		if !run(m, handler.KindLine) {
			return nil, chain.Err()
		}
	}
	for _, m := range k.sticky {
		if !run(m, handler.KindSticky) {
			return nil, chain.Err()
		}
	}
	if p.Cell != nil {
		if !run(*p.Cell, handler.KindCell) {
			return nil, chain.Err()
		}
	}

	if !skip && chain.Context().Evaluate && strings.TrimSpace(code) != "" {
		if k.ev == nil {
			return nil, ErrNoEvaluator
		}
		v, err := k.ev.Evaluate(code)
		if err != nil {
			k.logger.WithError(err).Debug("evaluation failed")
			k.error(fmt.Sprintf("Error: %v", err))
			return nil, err
		}
		value = v
	}

	value = chain.PostProcess(value)
	if value != nil {
		k.print(evaluator.Format(value))
	}
	return value, nil
}

// toggleSticky adds m to the sticky magics, or removes it when a sticky
// magic of that name is already active.
func (k *Kernel) toggleSticky(m magicLine) {
	ref := meta.Ref(handler.KindCell, m.Name)
	for i, s := range k.sticky {
		if s.Name == m.Name {
			k.sticky = append(k.sticky[:i], k.sticky[i+1:]...)
			k.print(fmt.Sprintf("%s removed.", ref))
			return
		}
	}
	if _, err := k.d.Resolve(handler.KindSticky, m.Name); err != nil {
		k.error(k.d.Help(handler.KindCell, m.Name, 0))
		return
	}
	k.sticky = append(k.sticky, m)
	k.print(fmt.Sprintf("%s added.", ref))
}

func (k *Kernel) help(target string, level int) string {
	if strings.HasPrefix(target, "%") {
		kind, name := meta.SplitRef(target)
		return k.d.Help(kind, name, level)
	}
	return k.d.HelpOn(evaluator.InfoAt(target, len(target)), level)
}

// SetVariable sets a variable in the evaluator environment.
func (k *Kernel) SetVariable(name string, value any) error {
	if k.ev == nil {
		return ErrNoEvaluator
	}
	return k.ev.Environment().Set(name, value)
}

// GetVariable reads a variable from the evaluator environment.
func (k *Kernel) GetVariable(name string) (any, bool) {
	if k.ev == nil {
		return nil, false
	}
	return k.ev.Environment().Get(name)
}

// CallFunction calls the evaluator function name with args.
func (k *Kernel) CallFunction(name string, args ...any) (any, error) {
	if k.ev == nil {
		return nil, ErrNoEvaluator
	}
	c, ok := k.ev.(Caller)
	if !ok {
		return nil, ErrCallUnsupported
	}
	return c.Call(name, args...)
}

// Completions returns the completions at cursor. A word starting with %
// completes magic names; anything else is completed by the evaluator.
func (k *Kernel) Completions(code string, cursor int) []string {
	info := evaluator.InfoAt(code, cursor)
	line := info.Code[:info.Cursor]
	if i := strings.LastIndexByte(line, '\n'); i >= 0 {
		line = line[i+1:]
	}
	line = strings.TrimLeft(line, " \t")

	if strings.HasPrefix(line, "%") && !strings.ContainsAny(line, " \t") {
		return k.magicCompletions(line)
	}
	return k.d.Completions(info)
}

func (k *Kernel) magicCompletions(word string) []string {
	marks := word[:len(word)-len(strings.TrimLeft(word, "%"))]
	prefix := word[len(marks):]

	kind := handler.KindLine
	if len(marks) > 1 {
		kind = handler.KindCell
	}
	matches := []string{}
	for _, name := range k.d.ListHandlers(kind) {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, marks+name)
		}
	}
	return matches
}

// HelpOn returns help on the object at cursor.
func (k *Kernel) HelpOn(code string, cursor, level int) string {
	info := evaluator.InfoAt(code, cursor)
	if strings.HasPrefix(strings.TrimSpace(info.Code), "%") {
		kind, name := meta.SplitRef(strings.Fields(info.Code)[0])
		return k.d.Help(kind, strings.TrimLeft(name, "%"), level)
	}
	return k.d.HelpOn(info, level)
}

func (k *Kernel) print(text string) {
	if k.out != nil {
		k.out.Print(text)
	}
}

func (k *Kernel) error(text string) {
	if k.out != nil {
		k.out.Error(text)
	}
}

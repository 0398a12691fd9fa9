// Package dispatcher resolves magic commands and coordinates their execution.
package dispatcher

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/dispatcher/hook"
	"github.com/dshills/magicshell/internal/evaluator"
	"github.com/dshills/magicshell/internal/option"
)

// Dispatcher resolves magics against its registry and runs them.
type Dispatcher struct {
	mu sync.RWMutex

	registry *Registry

	// Session collaborators
	evaluator evaluator.Evaluator
	output    execctx.OutputInterface
	logger    logrus.FieldLogger

	config  Config
	metrics *Metrics

	hookManager *hook.Manager
}

// New creates a new dispatcher with the given configuration.
func New(config Config) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		config:   config,
		logger:   discardLogger(),
	}

	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}

	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults() *Dispatcher {
	return New(DefaultConfig())
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetEvaluator sets the evaluator handed to magics.
func (d *Dispatcher) SetEvaluator(ev evaluator.Evaluator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.evaluator = ev
}

// SetOutput sets the user-visible output channel.
func (d *Dispatcher) SetOutput(out execctx.OutputInterface) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.output = out
}

// SetLogger sets the logger invocation faults are reported to.
// A nil logger discards records.
func (d *Dispatcher) SetLogger(logger logrus.FieldLogger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if logger == nil {
		logger = discardLogger()
	}
	d.logger = logger
}

// Evaluator returns the evaluator (may be nil).
func (d *Dispatcher) Evaluator() evaluator.Evaluator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.evaluator
}

// Output returns the output channel (may be nil).
func (d *Dispatcher) Output() execctx.OutputInterface {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.output
}

// Logger returns the logger.
func (d *Dispatcher) Logger() logrus.FieldLogger {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.logger
}

// Register registers a handler under its kind and name.
func (d *Dispatcher) Register(h *handler.Handler) error {
	return d.registry.Register(h)
}

// Unregister removes the handler for kind and name.
func (d *Dispatcher) Unregister(kind handler.Kind, name string) bool {
	return d.registry.Unregister(kind, name)
}

// Resolve returns the handler for kind and name or a *NotFoundError.
func (d *Dispatcher) Resolve(kind handler.Kind, name string) (*handler.Handler, error) {
	return d.registry.Resolve(kind, name)
}

// ListHandlers returns the sorted names of the magics of kind.
func (d *Dispatcher) ListHandlers(kind handler.Kind) []string {
	return d.registry.List(kind)
}

// Chain starts a new dispatch chain.
func (d *Dispatcher) Chain() *Chain {
	ctx := execctx.New().
		WithEvaluator(d.Evaluator()).
		WithOutput(d.Output())
	return &Chain{d: d, ctx: ctx}
}

// Dispatch runs a magic on a chain of its own.
func (d *Dispatcher) Dispatch(ctx context.Context, kind handler.Kind, name string, args option.Args) handler.Result {
	return d.Chain().Dispatch(ctx, kind, name, args)
}

// DispatchRequest runs a request on a chain of its own.
func (d *Dispatcher) DispatchRequest(ctx context.Context, req handler.Request) handler.Result {
	return d.Chain().DispatchRequest(ctx, req)
}

// Completions returns the evaluator's completions for info, or an empty
// list when the evaluator does not complete.
func (d *Dispatcher) Completions(info evaluator.Info) []string {
	if cp, ok := d.Evaluator().(evaluator.CompletionProvider); ok {
		if matches := cp.GetCompletions(info); matches != nil {
			return matches
		}
	}
	return []string{}
}

// record records a finished dispatch in the metrics, if enabled.
func (d *Dispatcher) record(key handler.Key, start time.Time, result handler.Result) {
	if d.metrics != nil {
		d.metrics.Record(key, time.Since(start), result)
	}
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Metrics returns the metrics collector (may be nil if disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}

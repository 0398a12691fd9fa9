// Package app wires a magicshell session together and runs it: settings,
// host output and logging, the Lua evaluator, the dispatcher with its
// builtin magics and hooks, and the kernel.
package app

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/magicshell/internal/config"
	"github.com/dshills/magicshell/internal/config/watcher"
	"github.com/dshills/magicshell/internal/dispatcher"
	"github.com/dshills/magicshell/internal/dispatcher/handlers"
	"github.com/dshills/magicshell/internal/dispatcher/hook"
	"github.com/dshills/magicshell/internal/evaluator/lua"
	"github.com/dshills/magicshell/internal/host"
	"github.com/dshills/magicshell/internal/kernel"
)

// Application is one session and the components it owns.
type Application struct {
	mu sync.Mutex

	opts    Options
	config  config.Config
	session string

	host       *host.Host
	evaluator  *lua.Evaluator
	dispatcher *dispatcher.Dispatcher
	kernel     *kernel.Kernel
	watcher    *watcher.Watcher

	running  atomic.Bool
	closed   atomic.Bool
	shutdown sync.Once
}

// Options configures the application.
type Options struct {
	// ConfigPath is the settings file. Empty uses defaults and the
	// environment only.
	ConfigPath string

	// Configure adjusts the loaded settings, for command line overrides.
	// The result is validated again.
	Configure func(*config.Config)

	// Stdout and Stderr default to the process streams. Log records go to
	// Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// Environ replaces os.Environ for the environment settings layer.
	Environ func() []string
}

// New loads the settings and builds every component.
func New(opts Options) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	app := &Application{
		opts:    opts,
		session: uuid.NewString(),
	}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes the components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Settings
	cfg, err := config.Load(app.opts.ConfigPath, app.configOptions()...)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if app.opts.Configure != nil {
		app.opts.Configure(&cfg)
		if err := cfg.Validate(); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	}
	app.config = cfg

	// 2. Output and logging
	app.host = host.New(
		host.WithOutput(app.opts.Stdout),
		host.WithErrorOutput(app.opts.Stderr),
		host.WithLogOutput(app.opts.Stderr),
		host.WithFormat(cfg.Log.Format),
		host.WithLevel(cfg.LogLevel()),
		host.WithFields(logrus.Fields{"session": app.session}),
	)

	// 3. Evaluator
	app.evaluator, err = lua.New(
		lua.WithTimeout(cfg.Lua.Timeout.Std()),
		lua.WithOutput(app.host.Writer()),
	)
	if err != nil {
		return &InitError{Component: "evaluator", Err: err}
	}

	// 4. Dispatcher
	app.dispatcher = dispatcher.New(dispatcher.Config{
		EnableMetrics:    cfg.Dispatcher.EnableMetrics,
		RecoverFromPanic: cfg.Dispatcher.RecoverFromPanic,
		SplitMode:        cfg.SplitMode(),
	})
	app.dispatcher.SetLogger(app.host.Logger())
	if err := handlers.RegisterBuiltins(app.dispatcher); err != nil {
		app.evaluator.Close()
		return &InitError{Component: "dispatcher", Err: err}
	}
	if err := app.installHooks(); err != nil {
		app.evaluator.Close()
		return &InitError{Component: "dispatcher", Err: err}
	}

	// 5. Kernel
	app.kernel = kernel.New(app.dispatcher, app.evaluator, app.host,
		kernel.WithLogger(app.host.Logger()),
		kernel.WithSessionID(app.session),
	)

	app.host.Logger().WithFields(logrus.Fields{
		"config":     app.opts.ConfigPath,
		"magics":     app.dispatcher.Registry().Count(),
		"split":      cfg.SplitMode().String(),
		"luaTimeout": cfg.Lua.Timeout.Std().String(),
	}).Debug("session started")
	return nil
}

func (app *Application) configOptions() []config.Option {
	if app.opts.Environ == nil {
		return nil
	}
	return []config.Option{config.WithEnviron(app.opts.Environ)}
}

// installHooks registers the audit hook, the filter hook when magics are
// disabled and the timing hook when slow magics are reported.
func (app *Application) installHooks() error {
	denied, err := app.config.Dispatcher.DisabledKeys()
	if err != nil {
		return err
	}
	m := app.dispatcher.EnableHookManager()
	m.Register(hook.NewAuditHook(app.host.HookLogger()))
	if len(denied) > 0 {
		m.Register(hook.NewFilterHook(denied...))
	}
	if slow := app.config.Dispatcher.SlowMagic.Std(); slow > 0 {
		logger := app.host.Logger()
		m.Register(hook.NewTimingHook(func(magic string, took time.Duration) {
			if took >= slow {
				logger.WithFields(logrus.Fields{
					"magic":    magic,
					"duration": took.String(),
				}).Warn("slow magic")
			}
		}))
	}
	return nil
}

// Config returns the settings the session started with.
func (app *Application) Config() config.Config {
	return app.config
}

// Session returns the session id.
func (app *Application) Session() string {
	return app.session
}

// Host returns the output and logging host.
func (app *Application) Host() *host.Host {
	return app.host
}

// Dispatcher returns the magic dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher {
	return app.dispatcher
}

// Kernel returns the kernel.
func (app *Application) Kernel() *kernel.Kernel {
	return app.kernel
}

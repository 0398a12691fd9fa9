package app

import (
	"github.com/sirupsen/logrus"

	"github.com/dshills/magicshell/internal/config"
)

// WatchConfig reloads the settings file whenever it changes and applies
// the new log level. Other settings take effect in the next session. It
// does nothing when the session has no settings file.
func (app *Application) WatchConfig() error {
	if app.opts.ConfigPath == "" {
		return nil
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.watcher != nil {
		return nil
	}

	w, err := config.Watch(app.opts.ConfigPath, app.reload, app.configOptions()...)
	if err != nil {
		return err
	}
	app.watcher = w
	return nil
}

func (app *Application) reload(cfg config.Config, err error) {
	logger := app.host.Logger().WithField("config", app.opts.ConfigPath)
	if err != nil {
		logger.WithError(err).Warn("configuration reload failed")
		return
	}
	if app.opts.Configure != nil {
		app.opts.Configure(&cfg)
	}
	app.host.SetLevel(cfg.LogLevel())
	logger.WithField("level", cfg.LogLevel().String()).Info("configuration reloaded")
}

// Shutdown stops the config watcher, logs the dispatch metrics and closes
// the evaluator. Calls after the first do nothing.
func (app *Application) Shutdown() {
	app.shutdown.Do(func() {
		app.closed.Store(true)

		app.mu.Lock()
		w := app.watcher
		app.watcher = nil
		app.mu.Unlock()

		logger := app.host.Logger()
		if w != nil {
			if err := w.Close(); err != nil {
				logger.WithError(err).Warn("closing config watcher")
			}
		}

		if m := app.dispatcher.Metrics(); m != nil {
			s := m.Snapshot()
			logger.WithFields(logrus.Fields{
				"dispatches": s.TotalDispatches,
				"errors":     s.TotalErrors,
				"faults":     s.Faults,
				"notFound":   s.NotFound,
				"cancelled":  s.Cancelled,
				"panics":     s.TotalPanics,
				"fallbacks":  s.TotalFallbacks,
				"magics":     s.MagicCount,
				"average":    s.AverageDuration.String(),
			}).Debug("dispatch metrics")
		}

		if err := app.evaluator.Close(); err != nil {
			logger.WithError(err).Warn("closing evaluator")
		}
		logger.Debug("session ended")
	})
}

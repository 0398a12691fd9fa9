package config

import (
	"github.com/dshills/magicshell/internal/config/watcher"
)

// Watch reloads the settings at path each time the file changes and hands
// the result to fn. A failed reload passes the error and a zero Config.
// Close the returned watcher to stop.
func Watch(path string, fn func(Config, error), opts ...Option) (*watcher.Watcher, error) {
	w, err := watcher.New(path)
	if err != nil {
		return nil, err
	}
	w.OnChange(func(watcher.Event) {
		fn(Load(path, opts...))
	})
	return w, nil
}

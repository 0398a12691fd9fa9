package dispatcher

import "github.com/dshills/magicshell/internal/option"

// Config controls how a Dispatcher runs magics.
type Config struct {
	// EnableMetrics turns on per-magic counters and timings.
	EnableMetrics bool

	// RecoverFromPanic turns a panicking magic into a fault instead of
	// crashing the session.
	RecoverFromPanic bool

	// SplitMode selects how magic arguments are tokenized.
	SplitMode option.SplitMode
}

// DefaultConfig recovers from panics, splits on whitespace and keeps no
// metrics.
func DefaultConfig() Config {
	return Config{RecoverFromPanic: true, SplitMode: option.SplitWhitespace}
}

// WithMetrics returns c with metrics on.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery returns c with panic recovery set to on.
func (c Config) WithPanicRecovery(on bool) Config {
	c.RecoverFromPanic = on
	return c
}

// WithSplitMode returns c with the tokenizer set to mode.
func (c Config) WithSplitMode(mode option.SplitMode) Config {
	c.SplitMode = mode
	return c
}

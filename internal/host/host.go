// Package host provides the session's output channels and logger.
package host

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/hook"
)

// Host owns user-visible output and the structured logger.
type Host struct {
	mu sync.Mutex

	out    io.Writer
	errOut io.Writer

	logger *logrus.Logger
	fields logrus.Fields
}

var _ execctx.OutputInterface = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithOutput sets the writer for normal output.
func WithOutput(w io.Writer) Option {
	return func(h *Host) {
		h.out = w
	}
}

// WithErrorOutput sets the writer for error output.
func WithErrorOutput(w io.Writer) Option {
	return func(h *Host) {
		h.errOut = w
	}
}

// WithLogOutput sets where log records are written.
func WithLogOutput(w io.Writer) Option {
	return func(h *Host) {
		h.logger.SetOutput(w)
	}
}

// WithLevel sets the log level.
func WithLevel(level logrus.Level) Option {
	return func(h *Host) {
		h.logger.SetLevel(level)
	}
}

// WithFormat selects the "json" or "text" log formatter.
func WithFormat(format string) Option {
	return func(h *Host) {
		h.logger.SetFormatter(formatter(format))
	}
}

// WithFields attaches fields to every log record.
func WithFields(fields logrus.Fields) Option {
	return func(h *Host) {
		for k, v := range fields {
			h.fields[k] = v
		}
	}
}

// New creates a Host writing to stdout and stderr, logging text records
// at info level to stderr.
func New(opts ...Option) *Host {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(formatter("text"))

	h := &Host{
		out:    os.Stdout,
		errOut: os.Stderr,
		logger: logger,
		fields: logrus.Fields{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func formatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
}

// Logger returns the session logger with the host fields attached.
func (h *Host) Logger() logrus.FieldLogger {
	return h.logger.WithFields(h.fields)
}

// SetLevel changes the log level.
func (h *Host) SetLevel(level logrus.Level) {
	h.logger.SetLevel(level)
}

// Level returns the current log level.
func (h *Host) Level() logrus.Level {
	return h.logger.GetLevel()
}

// Print writes text to the normal output, ending it with a newline.
func (h *Host) Print(text string) {
	h.write(h.out, text)
}

// Error writes text to the error output, ending it with a newline.
func (h *Host) Error(text string) {
	h.write(h.errOut, text)
}

func (h *Host) write(w io.Writer, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, _ = io.WriteString(w, text)
}

// Writer returns the normal output as an io.Writer.
func (h *Host) Writer() io.Writer {
	return lockedWriter{h}
}

type lockedWriter struct{ h *Host }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.h.mu.Lock()
	defer w.h.mu.Unlock()
	return w.h.out.Write(p)
}

// HookLogger adapts the session logger to the dispatch hook Logger.
func (h *Host) HookLogger() hook.Logger {
	return hookLogger{h.Logger()}
}

type hookLogger struct {
	l logrus.FieldLogger
}

func (a hookLogger) Debug(msg string, kv ...interface{}) { a.l.WithFields(toFields(kv)).Debug(msg) }
func (a hookLogger) Info(msg string, kv ...interface{})  { a.l.WithFields(toFields(kv)).Info(msg) }
func (a hookLogger) Error(msg string, kv ...interface{}) { a.l.WithFields(toFields(kv)).Error(msg) }

// toFields pairs up alternating keys and values. A trailing key without
// a value is kept with a nil value.
func toFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		var value interface{}
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		fields[key] = value
	}
	return fields
}

// Package config provides the layered settings of a magicshell session.
//
// Settings are resolved in order: built-in defaults, then the config file
// (TOML or YAML by extension), then MAGICSHELL_* environment variables.
// Later layers override earlier ones key by key.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dshills/magicshell/internal/config/loader"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/option"
)

// Config holds all session settings.
type Config struct {
	Log        LogConfig        `toml:"log" yaml:"log"`
	Dispatcher DispatcherConfig `toml:"dispatcher" yaml:"dispatcher"`
	Parser     ParserConfig     `toml:"parser" yaml:"parser"`
	Lua        LuaConfig        `toml:"lua" yaml:"lua"`
	Kernel     KernelConfig     `toml:"kernel" yaml:"kernel"`
}

// LogConfig configures the session logger.
type LogConfig struct {
	// Level is a logrus level name.
	Level string `toml:"level" yaml:"level"`
	// Format is "text" or "json".
	Format string `toml:"format" yaml:"format"`
}

// DispatcherConfig configures magic dispatch.
type DispatcherConfig struct {
	EnableMetrics    bool `toml:"enableMetrics" yaml:"enableMetrics"`
	RecoverFromPanic bool `toml:"recoverFromPanic" yaml:"recoverFromPanic"`
	// SlowMagic is the duration from which a magic is logged as slow.
	// Zero disables the report.
	SlowMagic Duration `toml:"slowMagic" yaml:"slowMagic"`
	// Disabled lists magics that may not run, spelled "%name" for line
	// magics and "%%name" for cell magics.
	Disabled []string `toml:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// ParserConfig configures argument tokenization.
type ParserConfig struct {
	// ShellSplit enables quote-aware splitting of magic arguments.
	ShellSplit bool `toml:"shellSplit" yaml:"shellSplit"`
}

// LuaConfig configures the Lua evaluator.
type LuaConfig struct {
	// Timeout bounds one evaluation. Zero disables it.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// KernelConfig configures the interactive kernel.
type KernelConfig struct {
	Prompt             string `toml:"prompt" yaml:"prompt"`
	ContinuationPrompt string `toml:"continuationPrompt" yaml:"continuationPrompt"`
}

// Duration is a time.Duration spelled like "500ms" in config sources.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Dispatcher: DispatcherConfig{
			RecoverFromPanic: true,
			SlowMagic:        Duration(time.Second),
		},
		Lua: LuaConfig{
			Timeout: Duration(5 * time.Second),
		},
		Kernel: KernelConfig{
			Prompt:             "magic> ",
			ContinuationPrompt: "   ...> ",
		},
	}
}

// Validate checks that every setting has a usable value.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Dispatcher.SlowMagic < 0 {
		return fmt.Errorf("%w: dispatcher.slowMagic must not be negative", ErrInvalidConfig)
	}
	if c.Lua.Timeout < 0 {
		return fmt.Errorf("%w: lua.timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Dispatcher.DisabledKeys(); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the parsed log level, or info when it is invalid.
func (c Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// SplitMode returns the argument tokenization mode.
func (c Config) SplitMode() option.SplitMode {
	if c.Parser.ShellSplit {
		return option.SplitShell
	}
	return option.SplitWhitespace
}

// DisabledKeys parses the disabled magic list.
func (c DispatcherConfig) DisabledKeys() ([]handler.Key, error) {
	keys := make([]handler.Key, 0, len(c.Disabled))
	for _, ref := range c.Disabled {
		key, err := ParseMagicRef(ref)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// ParseMagicRef parses "%name" as a line magic and "%%name" as a cell magic.
func ParseMagicRef(ref string) (handler.Key, error) {
	kind := handler.KindLine
	name := strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(name, "%%"):
		kind, name = handler.KindCell, name[2:]
	case strings.HasPrefix(name, "%"):
		name = name[1:]
	default:
		return handler.Key{}, fmt.Errorf("%w: magic %q must start with %% or %%%%", ErrInvalidConfig, ref)
	}
	if name == "" || strings.ContainsAny(name, " \t%") {
		return handler.Key{}, fmt.Errorf("%w: bad magic name %q", ErrInvalidConfig, ref)
	}
	return handler.KeyOf(kind, name), nil
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs        loader.FileSystem
	envPrefix string
	environ   func() []string
}

// WithFS reads config files through fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnvPrefix changes the prefix of environment overrides.
// An empty prefix disables them.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithEnviron replaces os.Environ as the source of environment overrides.
func WithEnviron(environ func() []string) Option {
	return func(o *options) {
		o.environ = environ
	}
}

// Load resolves the settings from defaults, the file at path (skipped
// when path is empty or the file does not exist) and the environment.
func Load(path string, opts ...Option) (Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var layers map[string]any
	if path != "" {
		fl, err := loader.ForPath(o.fs, path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		fileLayer, err := fl.Load()
		if err != nil {
			return Config{}, err
		}
		layers = loader.DeepMerge(layers, fileLayer)
	}

	if o.envPrefix != "" {
		env := loader.NewEnvLoader(o.envPrefix)
		if o.environ != nil {
			env.SetEnviron(o.environ)
		}
		envLayer, err := env.Load()
		if err != nil {
			return Config{}, err
		}
		layers = loader.DeepMerge(layers, envLayer)
	}

	cfg, err := Decode(layers)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode applies a merged settings map on top of Default.
func Decode(layers map[string]any) (Config, error) {
	cfg := Default()
	if len(layers) == 0 {
		return cfg, nil
	}
	data, err := toml.Marshal(layers)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Encode renders the settings as "toml" or "yaml".
func (c Config) Encode(format string) ([]byte, error) {
	switch format {
	case "toml":
		return toml.Marshal(c)
	case "yaml", "yml":
		return yaml.Marshal(c)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
}

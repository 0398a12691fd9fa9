package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "MAGICSHELL_"

// EnvLoader turns PREFIX_SECTION_SETTING_NAME variables into a nested
// section.settingName map. Aliases name settings that do not follow the
// convention.
type EnvLoader struct {
	prefix  string
	aliases map[string]string
	environ func() []string
}

var _ Loader = (*EnvLoader)(nil)

// NewEnvLoader returns a loader for variables starting with prefix, which
// includes the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix: prefix,
		aliases: map[string]string{
			prefix + "LOG_LEVEL":   "log.level",
			prefix + "LUA_TIMEOUT": "lua.timeout",
			prefix + "PROMPT":      "kernel.prompt",
			prefix + "DISABLED":    "dispatcher.disabled",
		},
		environ: os.Environ,
	}
}

// SetEnviron replaces os.Environ as the variable source.
func (l *EnvLoader) SetEnviron(environ func() []string) {
	l.environ = environ
}

// Alias maps the variable name to the dotted setting path.
func (l *EnvLoader) Alias(name, path string) {
	l.aliases[name] = path
}

// Load implements Loader. An empty value is kept as an empty string.
func (l *EnvLoader) Load() (map[string]any, error) {
	out := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, ok := l.aliases[name]
		if !ok {
			path = l.envToPath(name)
		}
		setByPath(out, path, parseValue(value))
	}
	return out, nil
}

// envToPath converts PREFIX_SECTION_SOME_NAME to section.someName.
func (l *EnvLoader) envToPath(name string) string {
	parts := strings.Split(strings.TrimPrefix(name, l.prefix), "_")
	path := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return path
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[1]))
	for _, part := range parts[2:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	return path + "." + b.String()
}

// parseValue types a variable value: booleans in their usual spellings,
// integers, decimals and JSON arrays or objects. Anything else, durations
// included, stays a string for the typed config to decode.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "":
		return s
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if (s[0] == '[' || s[0] == '{') && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}
	return s
}

// setByPath stores value under a dot-separated path, creating the maps
// on the way.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

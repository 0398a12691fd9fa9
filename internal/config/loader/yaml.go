package loader

import (
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// yaml.v3 only reports positions inside the message.
var yamlLine = regexp.MustCompile(`line (\d+)`)

func parseYAML(source string, data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		if sub := yamlLine.FindStringSubmatch(err.Error()); sub != nil {
			perr.Line, _ = strconv.Atoi(sub[1])
		}
		return nil, perr
	}
	return normalize(m), nil
}

// normalize converts integers to int64 so YAML and TOML maps agree.
func normalize(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case map[string]any:
		return normalize(val)
	case []any:
		for i, e := range val {
			val[i] = normalizeValue(e)
		}
		return val
	default:
		return v
	}
}

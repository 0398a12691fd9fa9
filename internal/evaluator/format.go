package evaluator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Format renders a value returned by Evaluate for display.
// Sequences print as {a, b} and maps as {k = v} with sorted keys.
// Strings nested in containers are quoted; a top-level string is not.
func Format(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var sb strings.Builder
	format(&sb, v)
	return sb.String()
}

func format(sb *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("nil")
	case string:
		sb.WriteString(strconv.Quote(val))
	case float64:
		sb.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case []any:
		sb.WriteByte('{')
		for i, e := range val {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, e)
		}
		sb.WriteByte('}')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(" = ")
			format(sb, val[k])
		}
		sb.WriteByte('}')
	default:
		fmt.Fprint(sb, val)
	}
}

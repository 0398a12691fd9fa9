package evaluator_test

import (
	"testing"

	"github.com/dshills/magicshell/internal/evaluator"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{"plain", "plain"},
		{int64(3), "3"},
		{2.5, "2.5"},
		{true, "true"},
		{[]any{int64(1), "a", nil}, `{1, "a", nil}`},
		{map[string]any{"b": 1.0, "a": []any{}}, "{a = {}, b = 1}"},
	}
	for _, tt := range tests {
		if got := evaluator.Format(tt.in); got != tt.want {
			t.Errorf("Format(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package option_test

import (
	"reflect"
	"testing"

	"github.com/dshills/magicshell/internal/option"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		mode option.SplitMode
		want []string
	}{
		{"whitespace", "  a  b\tc\n", option.SplitWhitespace, []string{"a", "b", "c"}},
		{"whitespace keeps quotes", `a "b c"`, option.SplitWhitespace, []string{"a", `"b`, `c"`}},
		{"empty", "", option.SplitWhitespace, []string{}},
		{"shell quotes", `a "b c" 'd e'`, option.SplitShell, []string{"a", "b c", "d e"}},
		{"shell escape", `a\ b c`, option.SplitShell, []string{"a b", "c"}},
		{"shell leaves env alone", `$HOME`, option.SplitShell, []string{"$HOME"}},
		{"shell unterminated quote", `a "b c`, option.SplitShell, []string{"a", `"b`, "c"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := option.Tokenize(tc.raw, tc.mode)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	raw := option.Raw("x  --flag")
	if raw.IsTokenized() {
		t.Error("Raw args reported as tokenized")
	}
	if got := raw.Split(option.SplitWhitespace); !reflect.DeepEqual(got, []string{"x", "--flag"}) {
		t.Errorf("Split() = %q", got)
	}
	if raw.String() != "x  --flag" {
		t.Errorf("String() = %q", raw.String())
	}

	tokens := option.Tokens("a", "b c")
	if !tokens.IsTokenized() {
		t.Error("Tokens args not reported as tokenized")
	}
	if got := tokens.Split(option.SplitShell); !reflect.DeepEqual(got, []string{"a", "b c"}) {
		t.Errorf("Split() = %q", got)
	}
	if tokens.String() != "a b c" {
		t.Errorf("String() = %q", tokens.String())
	}
}

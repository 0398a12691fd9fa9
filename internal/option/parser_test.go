package option_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/magicshell/internal/option"
)

func testSpecs() []*option.Spec {
	return []*option.Spec{
		option.New("-v", "--verbose").Bool().Default(false).Help("print more"),
		option.New("-n", "--count").Int().Default(1).Help("repeat count"),
		option.New("--name").Text().Help("who"),
		option.New("-r", "--ratio").Float().Default(0.5),
		option.New("-t", "--tag").List().Default([]string{}),
	}
}

func TestParseWithoutSpecs(t *testing.T) {
	args := []string{"a", "-b", "--c"}
	parsed, err := option.Parse(nil, args)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(parsed.Positional, args) {
		t.Errorf("Positional = %q, want %q", parsed.Positional, args)
	}
	if len(parsed.Options) != 0 {
		t.Errorf("Options = %v, want empty", parsed.Options)
	}

	parsed.Positional[0] = "changed"
	if args[0] != "a" {
		t.Error("Parse aliased the input slice")
	}
}

func TestParseDefaults(t *testing.T) {
	parsed, err := option.Parse(testSpecs(), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := map[string]any{
		"verbose": false,
		"count":   1,
		"name":    nil,
		"ratio":   0.5,
		"tag":     []string{},
	}
	if !reflect.DeepEqual(parsed.Options, want) {
		t.Errorf("Options = %#v, want %#v", parsed.Options, want)
	}
	if len(parsed.Positional) != 0 {
		t.Errorf("Positional = %q, want empty", parsed.Positional)
	}
}

func TestParseVerboseScenario(t *testing.T) {
	specs := []*option.Spec{option.New("--verbose").Bool().Default(false)}
	parsed, err := option.Parse(specs, option.Tokenize("hello --verbose", option.SplitWhitespace))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(parsed.Positional, []string{"hello"}) {
		t.Errorf("Positional = %q", parsed.Positional)
	}
	if !reflect.DeepEqual(parsed.Options, map[string]any{"verbose": true}) {
		t.Errorf("Options = %v", parsed.Options)
	}
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		positional []string
		key        string
		want       any
	}{
		{"short int", []string{"-n", "3", "x"}, []string{"x"}, "count", 3},
		{"long int equals", []string{"--count=7"}, []string{}, "count", 7},
		{"string", []string{"--name", "ada", "rest"}, []string{"rest"}, "name", "ada"},
		{"float", []string{"-r", "2.5"}, []string{}, "ratio", 2.5},
		{"list", []string{"-t", "a", "b", "-t", "c"}, []string{"b"}, "tag", []string{"a", "c"}},
		{"interspersed", []string{"a", "-v", "b"}, []string{"a", "b"}, "verbose", true},
		{"terminator", []string{"--", "-v"}, []string{"-v"}, "verbose", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := option.Parse(testSpecs(), tc.args)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tc.args, err)
			}
			if !reflect.DeepEqual(parsed.Positional, tc.positional) {
				t.Errorf("Positional = %q, want %q", parsed.Positional, tc.positional)
			}
			if got := parsed.Options[tc.key]; !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Options[%q] = %#v, want %#v", tc.key, got, tc.want)
			}
		})
	}
}

func TestParseUsageError(t *testing.T) {
	tests := [][]string{
		{"--unknown"},
		{"-n", "many"},
		{"--name"},
		{"-h"},
	}

	for _, args := range tests {
		_, err := option.Parse(testSpecs(), args)
		if !errors.Is(err, option.ErrUsage) {
			t.Errorf("Parse(%q) error = %v, want ErrUsage", args, err)
			continue
		}
		var ue *option.UsageError
		if !errors.As(err, &ue) {
			t.Errorf("Parse(%q) error is not a *UsageError", args)
		}
	}
}

func TestParseIgnoresMalformed(t *testing.T) {
	specs := []*option.Spec{
		option.New("verbose").Help("not a flag"),
		option.New("-q").Bool(),
	}

	parsed, err := option.Parse(specs, []string{"verbose", "-q"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(parsed.Positional, []string{"verbose"}) {
		t.Errorf("Positional = %q", parsed.Positional)
	}
	if !reflect.DeepEqual(parsed.Options, map[string]any{"q": true}) {
		t.Errorf("Options = %v", parsed.Options)
	}

	if _, err := option.Parse(specs, []string{"--verbose"}); !errors.Is(err, option.ErrUsage) {
		t.Errorf("malformed spec was recognized: err = %v", err)
	}
}

func TestParseSharedDest(t *testing.T) {
	specs := []*option.Spec{
		option.New("-a", "--alpha").Bool().Dest("mode").Default(false),
		option.New("-b", "--beta").Bool().Dest("mode"),
		option.New("-f", "--format").Text().Dest("out").Default("text"),
		option.New("-j", "--json").Text().Dest("out"),
	}

	tests := []struct {
		args []string
		want map[string]any
	}{
		{nil, map[string]any{"mode": false, "out": "text"}},
		{[]string{"-a"}, map[string]any{"mode": true, "out": "text"}},
		{[]string{"--beta"}, map[string]any{"mode": true, "out": "text"}},
		{[]string{"-f", "yaml"}, map[string]any{"mode": false, "out": "yaml"}},
		{[]string{"-j", "pretty"}, map[string]any{"mode": false, "out": "pretty"}},
		{[]string{"-f", "yaml", "-j", "pretty"}, map[string]any{"mode": false, "out": "pretty"}},
	}
	for _, tt := range tests {
		parsed, err := option.Parse(specs, tt.args)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.args, err)
		}
		if !reflect.DeepEqual(parsed.Options, tt.want) {
			t.Errorf("Parse(%q) options = %v, want %v", tt.args, parsed.Options, tt.want)
		}
	}
}

func TestParseOnlyMalformedBehavesLikeNoSpecs(t *testing.T) {
	specs := []*option.Spec{option.New("broken")}
	parsed, err := option.Parse(specs, []string{"--anything"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(parsed.Positional, []string{"--anything"}) {
		t.Errorf("Positional = %q", parsed.Positional)
	}
}

func TestParseDoesNotMutateSpecs(t *testing.T) {
	specs := testSpecs()
	before := make([]string, len(specs))
	for i, s := range specs {
		before[i] = option.FormatHelp(s)
	}

	for i := 0; i < 2; i++ {
		if _, err := option.Parse(specs, []string{"-v", "-n", "9", "-t", "x"}); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
	}

	for i, s := range specs {
		if got := option.FormatHelp(s); got != before[i] {
			t.Errorf("spec %d changed: %q -> %q", i, before[i], got)
		}
	}

	parsed, err := option.Parse(specs, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Options["count"] != 1 || parsed.Options["verbose"] != false {
		t.Errorf("state leaked between parses: %v", parsed.Options)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		typ  option.Type
		text string
		want any
	}{
		{option.TypeBool, "true", true},
		{option.TypeInt, "42", 42},
		{option.TypeFloat, "1.25", 1.25},
		{option.TypeString, "x y", "x y"},
		{option.TypeList, "[a b]", []string{"a", "b"}},
		{option.TypeList, "[]", []string{}},
	}
	for _, tc := range tests {
		got, err := option.ParseValue(tc.typ, tc.text)
		if err != nil {
			t.Errorf("ParseValue(%v, %q) error = %v", tc.typ, tc.text, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseValue(%v, %q) = %#v, want %#v", tc.typ, tc.text, got, tc.want)
		}
	}

	if _, err := option.ParseValue(option.TypeList, "a b"); err == nil {
		t.Error("expected error for unbracketed list")
	}
}

package evaluator_test

import (
	"testing"

	"github.com/dshills/magicshell/internal/evaluator"
)

func TestInfoAt(t *testing.T) {
	tests := []struct {
		code   string
		cursor int
		obj    string
		start  int
	}{
		{"print(string.up", -1, "string.up", 6},
		{"x = foo", 7, "foo", 4},
		{"x = foo", 5, "f", 4},
		{"", 0, "", 0},
		{"a + ", 4, "", 4},
		{"obj:meth", 100, "obj:meth", 0},
	}

	for _, tc := range tests {
		info := evaluator.InfoAt(tc.code, tc.cursor)
		if info.Obj != tc.obj || info.Start != tc.start {
			t.Errorf("InfoAt(%q, %d) = obj %q start %d, want %q %d",
				tc.code, tc.cursor, info.Obj, info.Start, tc.obj, tc.start)
		}
		if info.End != info.Cursor {
			t.Errorf("InfoAt(%q): End %d != Cursor %d", tc.code, info.End, info.Cursor)
		}
	}
}

func TestInfoJSONRoundTrip(t *testing.T) {
	info := evaluator.InfoAt(`print("hi") ; tab`, 17)

	data, err := info.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	got, err := evaluator.ParseInfo(data)
	if err != nil {
		t.Fatalf("ParseInfo() error = %v", err)
	}
	if got != info {
		t.Errorf("round trip = %+v, want %+v", got, info)
	}
}

func TestParseInfoDerivesFields(t *testing.T) {
	got, err := evaluator.ParseInfo([]byte(`{"code": "math.fl", "cursor_pos": 7}`))
	if err != nil {
		t.Fatalf("ParseInfo() error = %v", err)
	}
	if got.Obj != "math.fl" || got.Start != 0 || got.End != 7 {
		t.Errorf("ParseInfo() = %+v", got)
	}

	got, err = evaluator.ParseInfo([]byte(`{"code": "abc"}`))
	if err != nil {
		t.Fatalf("ParseInfo() error = %v", err)
	}
	if got.Cursor != 3 || got.Obj != "abc" {
		t.Errorf("ParseInfo() without cursor = %+v", got)
	}
}

func TestParseInfoErrors(t *testing.T) {
	for _, data := range []string{`not json`, `{"cursor_pos": 1}`} {
		if _, err := evaluator.ParseInfo([]byte(data)); err == nil {
			t.Errorf("ParseInfo(%s) expected error", data)
		}
	}
}

func TestMapEnvironmentInfo(t *testing.T) {
	env := evaluator.NewMapEnvironment()
	if err := env.Set("b", 2); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	_ = env.Set("a", "one")

	if v, ok := env.Get("a"); !ok || v != "one" {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	names := env.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v", names)
	}

	env.Delete("a")
	if _, ok := env.Get("a"); ok {
		t.Error("Delete(a) left the variable")
	}
	env.Clear()
	if len(env.Names()) != 0 {
		t.Error("Clear() left variables")
	}
}

package lua

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func TestNewState(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if state.IsClosed() {
		t.Error("NewState() returned closed state")
	}
	if got := state.UserGlobals(); len(got) != 0 {
		t.Errorf("UserGlobals() = %v, want none", got)
	}
	for _, lib := range []string{"string", "table", "math", "print", "require"} {
		if !state.IsBuiltin(lib) {
			t.Errorf("IsBuiltin(%q) = false", lib)
		}
	}
	for _, lib := range []string{"io", "os", "debug"} {
		if state.GetGlobal(lib) != glua.LNil {
			t.Errorf("%s should not be opened", lib)
		}
	}
}

func TestStateEval(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	tests := []struct {
		code string
		want []glua.LValue
	}{
		{"1 + 1", []glua.LValue{glua.LNumber(2)}},
		{"x = 5", []glua.LValue{}},
		{"x * 2", []glua.LValue{glua.LNumber(10)}},
		{"return 1, 'a'", []glua.LValue{glua.LNumber(1), glua.LString("a")}},
		{"local y = 3 return y", []glua.LValue{glua.LNumber(3)}},
	}
	for _, tt := range tests {
		got, err := state.Eval(tt.code)
		if err != nil {
			t.Fatalf("Eval(%q) error = %v", tt.code, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Eval(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestStateEvalErrors(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if _, err := state.Eval("x = = 1"); err == nil {
		t.Error("Eval() with syntax error should fail")
	}
	_, err = state.Eval("error('boom')")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Eval() error = %v, want boom", err)
	}
	if strings.Contains(err.Error(), "stack traceback") {
		t.Errorf("Eval() error should not carry a traceback: %q", err)
	}

	// The stack is balanced after failures.
	got, err := state.Eval("40 + 2")
	if err != nil || len(got) != 1 || got[0] != glua.LNumber(42) {
		t.Errorf("Eval() after error = %v, %v", got, err)
	}
}

func TestStateTimeout(t *testing.T) {
	state, err := NewState(WithTimeout(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	err = state.DoString("while true do end")
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("DoString() error = %v, want ErrExecutionTimeout", err)
	}

	// The state stays usable.
	if err := state.DoString("z = 1"); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateCall(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if err := state.DoString(`function add(a, b) return a + b end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	results, err := state.Call("add", glua.LNumber(2), glua.LNumber(3))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(results) != 1 || results[0] != glua.LNumber(5) {
		t.Errorf("Call() = %v, want [5]", results)
	}

	if _, err := state.Call("missing"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(missing) error = %v, want ErrNotFunction", err)
	}

	results, err = state.Call("add")
	if err == nil {
		t.Errorf("Call() with nil operands = %v, want error", results)
	}
}

func TestStatePrintOutput(t *testing.T) {
	var buf bytes.Buffer
	state, err := NewState(WithOutput(&buf))
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if err := state.DoString(`print("a", 1, nil)`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := buf.String(); got != "a\t1\tnil\n" {
		t.Errorf("print output = %q", got)
	}

	var other bytes.Buffer
	state.SetOutput(&other)
	_ = state.DoString(`print("b")`)
	if other.String() != "b\n" || buf.Len() != len("a\t1\tnil\n") {
		t.Errorf("SetOutput() did not redirect print: %q / %q", buf.String(), other.String())
	}
}

func TestStateLookupAndFields(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	_ = state.DoString(`cfg = {name = "x", sub = {deep = true}}`)

	if v := state.Lookup("cfg.sub.deep"); v != glua.LTrue {
		t.Errorf("Lookup(cfg.sub.deep) = %v", v)
	}
	if v := state.Lookup("string:upper"); v.Type() != glua.LTFunction {
		t.Errorf("Lookup(string:upper) = %v", v)
	}
	if v := state.Lookup("cfg.name.len"); v != glua.LNil {
		t.Errorf("Lookup through a string = %v, want nil", v)
	}
	if got := state.Fields("cfg"); !reflect.DeepEqual(got, []string{"name", "sub"}) {
		t.Errorf("Fields(cfg) = %v", got)
	}
	if got := state.Fields("cfg.name"); got != nil {
		t.Errorf("Fields(cfg.name) = %v, want nil", got)
	}
}

func TestStateReset(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	_ = state.DoString(`a = 1; b = "two"`)
	if got := state.UserGlobals(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("UserGlobals() = %v", got)
	}

	if err := state.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if got := state.UserGlobals(); len(got) != 0 {
		t.Errorf("UserGlobals() after Reset = %v", got)
	}
	if state.GetGlobal("string") == glua.LNil {
		t.Error("Reset() removed the string library")
	}
}

func TestStateClose(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := state.Eval("1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Eval() after Close error = %v", err)
	}
	if err := state.Reset(); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Reset() after Close error = %v", err)
	}
	if v := state.GetGlobal("x"); v != glua.LNil {
		t.Errorf("GetGlobal() after Close = %v", v)
	}
}

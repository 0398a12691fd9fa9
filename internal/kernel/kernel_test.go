package kernel_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/magicshell/internal/dispatcher"
	"github.com/dshills/magicshell/internal/dispatcher/execctx"
	"github.com/dshills/magicshell/internal/dispatcher/handler"
	"github.com/dshills/magicshell/internal/dispatcher/handlers"
	"github.com/dshills/magicshell/internal/evaluator/lua"
	"github.com/dshills/magicshell/internal/kernel"
)

type output struct {
	printed []string
	errors  []string
}

func (o *output) Print(text string) { o.printed = append(o.printed, text) }
func (o *output) Error(text string) { o.errors = append(o.errors, text) }

func (o *output) reset() {
	o.printed = nil
	o.errors = nil
}

func newKernel(t *testing.T) (*kernel.Kernel, *output) {
	t.Helper()
	ev, err := lua.New()
	if err != nil {
		t.Fatalf("lua.New() error = %v", err)
	}
	t.Cleanup(func() { ev.Close() })

	d := dispatcher.NewWithDefaults()
	if err := handlers.RegisterBuiltins(d); err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}
	out := &output{}
	return kernel.New(d, ev, out, kernel.WithSessionID("test")), out
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name    string
		cell    string
		want    any
		printed []string
	}{
		{"expression", "1 + 2", int64(3), []string{"3"}},
		{"statement", "x = 1", nil, nil},
		{"empty", "  \n", nil, nil},
		{"line magic then code", "%set -e x 5\nreturn x * 2", int64(10), []string{"10"}},
		{"line magic only", "%echo hi there", nil, []string{"hi there"}},
		{"cell magic consumes code", "%%lua\nreturn 4", int64(4), []string{"4"}},
		{"string value", "%%lua\nreturn 'ok'", "ok", []string{"ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, out := newKernel(t)
			got, err := k.Execute(context.Background(), tt.cell)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Execute() = %#v, want %#v", got, tt.want)
			}
			if !reflect.DeepEqual(out.printed, tt.printed) {
				t.Errorf("printed = %q, want %q", out.printed, tt.printed)
			}
			if len(out.errors) != 0 {
				t.Errorf("errors = %q", out.errors)
			}
		})
	}
}

func TestExecuteTimeCell(t *testing.T) {
	k, out := newKernel(t)

	got, err := k.Execute(context.Background(), "%%time\nreturn 6 * 7")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != int64(42) {
		t.Errorf("Execute() = %#v, want 42", got)
	}
	if len(out.printed) != 2 || !strings.HasPrefix(out.printed[0], "Time: ") || out.printed[1] != "42" {
		t.Errorf("printed = %q", out.printed)
	}
}

func TestExecuteFaultStopsCell(t *testing.T) {
	k, out := newKernel(t)
	boom := handler.New(handler.KindLine, "boom", func(*execctx.ExecutionContext, handler.Call) (any, error) {
		return nil, errors.New("kaboom")
	})
	if err := k.Dispatcher().Register(boom); err != nil {
		t.Fatal(err)
	}

	got, err := k.Execute(context.Background(), "%boom\n%echo after\ny = 1")
	if got != nil {
		t.Errorf("Execute() = %#v, want nil", got)
	}
	var invErr *dispatcher.InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("Execute() error = %v, want *InvocationError", err)
	}
	if !strings.Contains(strings.Join(out.errors, "\n"), "kaboom") {
		t.Errorf("errors = %q, want the handler error", out.errors)
	}
	if len(out.printed) != 0 {
		t.Errorf("printed = %q, want nothing after the fault", out.printed)
	}
	if _, ok := k.GetVariable("y"); ok {
		t.Error("code after a fault was evaluated")
	}

	// The next cell gets a fresh chain.
	if _, err := k.Execute(context.Background(), "y = 2"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if v, _ := k.GetVariable("y"); v != int64(2) {
		t.Errorf("y = %#v, want 2", v)
	}
}

func TestExecuteUnknownMagic(t *testing.T) {
	k, out := newKernel(t)

	got, err := k.Execute(context.Background(), "%nosuch\nreturn 7")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != int64(7) {
		t.Errorf("Execute() = %#v, want 7", got)
	}
	if len(out.errors) != 1 || out.errors[0] != "No such magic 'nosuch' for lines." {
		t.Errorf("errors = %q", out.errors)
	}

	out.reset()
	got, err = k.Execute(context.Background(), "%%nosuch\nreturn 7")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != nil {
		t.Errorf("body of an unknown cell magic was evaluated: %#v", got)
	}
	if len(out.errors) != 1 || out.errors[0] != "No such magic 'nosuch' for cells." {
		t.Errorf("errors = %q", out.errors)
	}
}

func TestExecuteEvaluationError(t *testing.T) {
	k, out := newKernel(t)

	if _, err := k.Execute(context.Background(), "return +"); err == nil {
		t.Fatal("Execute() error = nil, want syntax error")
	}
	if len(out.errors) != 1 || !strings.HasPrefix(out.errors[0], "Error: ") {
		t.Errorf("errors = %q", out.errors)
	}
}

func TestStickyMagic(t *testing.T) {
	k, out := newKernel(t)
	ctx := context.Background()

	if _, err := k.Execute(ctx, "%%%time"); err != nil {
		t.Fatal(err)
	}
	if len(out.printed) != 1 || out.printed[0] != "%%time added." {
		t.Errorf("printed = %q", out.printed)
	}
	if got := k.Sticky(); !reflect.DeepEqual(got, []string{"%%time"}) {
		t.Errorf("Sticky() = %q", got)
	}

	out.reset()
	if _, err := k.Execute(ctx, "return 1"); err != nil {
		t.Fatal(err)
	}
	if len(out.printed) != 2 || !strings.HasPrefix(out.printed[0], "Time: ") {
		t.Errorf("sticky magic did not run: %q", out.printed)
	}

	out.reset()
	if _, err := k.Execute(ctx, "%%%time"); err != nil {
		t.Fatal(err)
	}
	if len(out.printed) != 1 || out.printed[0] != "%%time removed." {
		t.Errorf("printed = %q", out.printed)
	}
	if got := k.Sticky(); len(got) != 0 {
		t.Errorf("Sticky() = %q, want none", got)
	}

	out.reset()
	if _, err := k.Execute(ctx, "%%%nosuch"); err != nil {
		t.Fatal(err)
	}
	if len(out.errors) != 1 || len(k.Sticky()) != 0 {
		t.Errorf("unknown sticky magic: errors = %q, sticky = %q", out.errors, k.Sticky())
	}
}

func TestHelpRequests(t *testing.T) {
	k, out := newKernel(t)
	if err := k.SetVariable("x", 42); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		cell string
		want string
	}{
		{"?%echo", "%echo [WORD...]"},
		{"%%time?", "%%time"},
		{"?%nosuch", "No such magic 'nosuch' for lines."},
		{"?x", "x"},
		{"?nothing_here", "Sorry, no help is available on 'nothing_here'."},
	}

	for _, tt := range tests {
		out.reset()
		got, err := k.Execute(context.Background(), tt.cell)
		if err != nil {
			t.Fatalf("Execute(%q) error = %v", tt.cell, err)
		}
		text, _ := got.(string)
		if !strings.Contains(text, tt.want) {
			t.Errorf("Execute(%q) = %q, want it to contain %q", tt.cell, text, tt.want)
		}
		if len(out.printed) != 1 || out.printed[0] != text {
			t.Errorf("Execute(%q) printed %q", tt.cell, out.printed)
		}
	}
}

func TestVariablesAndCalls(t *testing.T) {
	k, _ := newKernel(t)

	if err := k.SetVariable("greeting", "hello"); err != nil {
		t.Fatal(err)
	}
	if v, ok := k.GetVariable("greeting"); !ok || v != "hello" {
		t.Errorf("GetVariable() = %#v, %v", v, ok)
	}

	if _, err := k.Execute(context.Background(), "function add(a, b) return a + b end"); err != nil {
		t.Fatal(err)
	}
	got, err := k.CallFunction("add", 1, 2)
	if err != nil {
		t.Fatalf("CallFunction() error = %v", err)
	}
	if got != int64(3) {
		t.Errorf("CallFunction() = %#v, want 3", got)
	}
}

func TestCompletions(t *testing.T) {
	k, _ := newKernel(t)

	tests := []struct {
		code string
		want []string
	}{
		{"%ec", []string{"%echo"}},
		{"%%ti", []string{"%%time"}},
		{"%%%re", []string{"%%%reset"}},
		{"x = 1\n%zz", []string{}},
	}
	for _, tt := range tests {
		if got := k.Completions(tt.code, len(tt.code)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Completions(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}

	found := false
	for _, c := range k.Completions("str", 3) {
		if c == "string" {
			found = true
		}
	}
	if !found {
		t.Error("Completions(\"str\") does not offer string")
	}
}

func TestKernelHelpOn(t *testing.T) {
	k, _ := newKernel(t)

	if got := k.HelpOn("%%time", 3, 0); !strings.Contains(got, "%%time") {
		t.Errorf("HelpOn(%%%%time) = %q", got)
	}
	if got := k.HelpOn("%echo a b", 2, 0); !strings.Contains(got, "%echo") {
		t.Errorf("HelpOn(%%echo) = %q", got)
	}
	if got := k.HelpOn("string.rep", 10, 1); !strings.Contains(got, "string.rep") {
		t.Errorf("HelpOn(string.rep) = %q", got)
	}
}

func TestSession(t *testing.T) {
	k, _ := newKernel(t)
	if k.Session() != "test" {
		t.Errorf("Session() = %q", k.Session())
	}
	if !strings.Contains(k.Banner(), "test") {
		t.Errorf("Banner() = %q", k.Banner())
	}

	d := dispatcher.NewWithDefaults()
	if id := kernel.New(d, nil, nil).Session(); len(id) != 36 {
		t.Errorf("generated session id = %q", id)
	}
}

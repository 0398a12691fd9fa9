package lua

import (
	"fmt"
	"io"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/magicshell/internal/evaluator"
)

var keywords = []string{
	"and", "break", "do", "else", "elseif", "end", "false", "for",
	"function", "goto", "if", "in", "local", "nil", "not", "or",
	"repeat", "return", "then", "true", "until", "while",
}

// Evaluator runs Lua code for a session.
type Evaluator struct {
	state *State
	env   *Environment
}

// Compile-time interface checks.
var (
	_ evaluator.Evaluator          = (*Evaluator)(nil)
	_ evaluator.CompletionProvider = (*Evaluator)(nil)
	_ evaluator.HelpProvider       = (*Evaluator)(nil)
	_ evaluator.Environment        = (*Environment)(nil)
)

// New creates an Evaluator over a fresh sandboxed state.
func New(opts ...StateOption) (*Evaluator, error) {
	state, err := NewState(opts...)
	if err != nil {
		return nil, err
	}
	return &Evaluator{state: state, env: &Environment{state: state}}, nil
}

// State returns the underlying state.
func (e *Evaluator) State() *State {
	return e.state
}

// SetOutput changes where print writes.
func (e *Evaluator) SetOutput(w io.Writer) {
	e.state.SetOutput(w)
}

// Close releases the Lua state.
func (e *Evaluator) Close() error {
	return e.state.Close()
}

// Evaluate runs code. An expression yields its value; several values
// yield a []any; statements yield nil.
func (e *Evaluator) Evaluate(code string) (any, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	values, err := e.state.Eval(code)
	if err != nil {
		return nil, err
	}
	return e.values(values), nil
}

// Call invokes the global function name with args converted to Lua.
func (e *Evaluator) Call(name string, args ...any) (any, error) {
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = e.state.Bridge().ToLuaValue(a)
	}
	values, err := e.state.Call(name, largs...)
	if err != nil {
		return nil, err
	}
	return e.values(values), nil
}

func (e *Evaluator) values(values []lua.LValue) any {
	b := e.state.Bridge()
	switch len(values) {
	case 0:
		return nil
	case 1:
		return b.ToGoValue(values[0])
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = b.ToGoValue(v)
	}
	return out
}

// Environment returns the user globals.
func (e *Evaluator) Environment() evaluator.Environment {
	return e.env
}

// GetCompletions completes the dotted path ending at the cursor.
// Keywords are offered for top-level names.
func (e *Evaluator) GetCompletions(info evaluator.Info) []string {
	obj := info.Obj
	cut := strings.LastIndexAny(obj, ".:")

	var prefix, partial string
	var fields []string
	if cut < 0 {
		partial = obj
		fields = append(e.state.Fields(""), keywords...)
	} else {
		prefix, partial = obj[:cut+1], obj[cut+1:]
		fields = e.state.Fields(obj[:cut])
	}

	seen := make(map[string]bool)
	matches := []string{}
	for _, f := range fields {
		if !strings.HasPrefix(f, partial) || seen[f] {
			continue
		}
		seen[f] = true
		matches = append(matches, prefix+f)
	}
	sort.Strings(matches)
	return matches
}

// HelpOn describes the value at info.Obj. Level 0 gives its type and
// value; higher levels add function details or table fields.
func (e *Evaluator) HelpOn(info evaluator.Info, level int) (string, bool) {
	if info.Obj == "" {
		return "", false
	}
	v := e.state.Lookup(info.Obj)
	if v == lua.LNil {
		return "", false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", info.Obj, v.Type())
	switch lv := v.(type) {
	case *lua.LFunction:
		if level > 0 {
			if lv.IsG {
				sb.WriteString("\n  builtin")
			} else if lv.Proto != nil {
				fmt.Fprintf(&sb, "\n  defined at %s:%d", lv.Proto.SourceName, lv.Proto.LineDefined)
				fmt.Fprintf(&sb, "\n  parameters: %d", lv.Proto.NumParameters)
				if lv.Proto.IsVarArg != 0 {
					sb.WriteString(" + ...")
				}
			}
		}
	case *lua.LTable:
		keys := TableKeys(lv)
		fmt.Fprintf(&sb, " with %d fields", lv.Len()+len(keys))
		if level > 0 && len(keys) > 0 {
			fmt.Fprintf(&sb, "\n  fields: %s", strings.Join(keys, ", "))
		}
	default:
		fmt.Fprintf(&sb, " = %s", v.String())
	}
	return sb.String(), true
}

// Environment exposes the user globals of a State.
type Environment struct {
	state *State
}

// Get implements evaluator.Environment. Builtins are not visible.
func (env *Environment) Get(name string) (any, bool) {
	if env.state.IsBuiltin(name) {
		return nil, false
	}
	v := env.state.GetGlobal(name)
	if v == lua.LNil {
		return nil, false
	}
	return env.state.Bridge().ToGoValue(v), true
}

// Set implements evaluator.Environment.
func (env *Environment) Set(name string, value any) error {
	if name == "" {
		return fmt.Errorf("lua: empty variable name")
	}
	if env.state.IsBuiltin(name) {
		return fmt.Errorf("lua: cannot replace builtin %q", name)
	}
	if env.state.IsClosed() {
		return ErrStateClosed
	}
	env.state.SetGlobal(name, env.state.Bridge().ToLuaValue(value))
	return nil
}

// Delete implements evaluator.Environment.
func (env *Environment) Delete(name string) {
	if env.state.IsBuiltin(name) {
		return
	}
	env.state.SetGlobal(name, lua.LNil)
}

// Names implements evaluator.Environment.
func (env *Environment) Names() []string {
	return env.state.UserGlobals()
}

// Clear implements evaluator.Environment.
func (env *Environment) Clear() {
	_ = env.state.Reset()
}

package lua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single Eval, DoString or Call.
const DefaultTimeout = 5 * time.Second

// State wraps gopher-lua with a sandbox and serialized access.
//
// gopher-lua's LState is not goroutine-safe; every method takes the
// state's mutex. Code running past the timeout is interrupted through
// the LState context.
type State struct {
	L *lua.LState

	mu sync.Mutex

	timeout time.Duration
	output  io.Writer

	sandbox *Sandbox
	bridge  *Bridge

	// builtins are the globals present once the sandbox is installed.
	builtins map[string]bool

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout sets the execution timeout. Zero or less disables it.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithOutput sets the writer used by the Lua print function.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.output = w
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		timeout: DefaultTimeout,
		output:  io.Discard,
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	state.L = L
	openSafeLibraries(L)

	state.sandbox = NewSandbox(L, state.output)
	state.sandbox.Install()
	state.bridge = NewBridge(L)

	state.builtins = make(map[string]bool)
	for _, name := range TableKeys(L.G.Global) {
		state.builtins[name] = true
	}

	return state, nil
}

// openSafeLibraries opens the standard libraries that cannot reach the
// host. io, os and debug stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	lua.OpenCoroutine(L)
}

// Eval runs code and returns the values it produced.
// The code is first compiled as an expression ("return <code>") and, if
// that does not compile, as a chunk of statements.
func (s *State) Eval(code string) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn, err := s.L.LoadString("return " + code)
	if err != nil {
		fn, err = s.L.LoadString(code)
		if err != nil {
			return nil, luaError(err)
		}
	}
	return s.pcall(fn)
}

// DoString executes a chunk of Lua statements.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	fn, err := s.L.LoadString(code)
	if err != nil {
		return luaError(err)
	}
	_, err = s.pcall(fn)
	return err
}

// Call calls a global Lua function with the given arguments.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(name string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(name)
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotFunction, name, fnVal.Type())
	}
	return s.pcall(fnVal, args...)
}

// pcall runs fn under the timeout and collects its results.
// Callers hold s.mu.
func (s *State) pcall(fn lua.LValue, args ...lua.LValue) (results []lua.LValue, err error) {
	stackTop := s.L.GetTop()
	defer s.L.SetTop(stackTop)

	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		s.L.SetContext(ctx)
		defer func() {
			s.L.RemoveContext()
			cancel()
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w after %s", ErrExecutionTimeout, s.timeout)
			}
		}()
	}

	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(arg)
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("lua panic: %v", r)
			}
		}()
		err = s.L.PCall(len(args), lua.MultRet, nil)
	}()
	if err != nil {
		return nil, luaError(err)
	}

	nRet := s.L.GetTop() - stackTop
	results = make([]lua.LValue, 0, max(nRet, 0))
	for i := 1; i <= nRet; i++ {
		results = append(results, s.L.Get(stackTop+i))
	}
	return results, nil
}

// luaError strips the traceback from Lua API errors.
func luaError(err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return errors.New(apiErr.Object.String())
	}
	return err
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable. Setting LNil removes it.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// Lookup resolves a dotted or colon separated path such as
// "string.format" starting from the globals table.
func (s *State) Lookup(path string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return lookup(s.L.G.Global, splitPath(path))
}

// Fields returns the sorted string keys of the table at path, or the
// globals when path is empty. Builtin globals are included.
func (s *State) Fields(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	var v lua.LValue = s.L.G.Global
	if path != "" {
		v = lookup(s.L.G.Global, splitPath(path))
	}
	if tbl, ok := v.(*lua.LTable); ok {
		return TableKeys(tbl)
	}
	return nil
}

// UserGlobals returns the sorted names of globals defined after the
// sandbox was installed.
func (s *State) UserGlobals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	return s.userGlobals()
}

func (s *State) userGlobals() []string {
	var names []string
	for _, name := range TableKeys(s.L.G.Global) {
		if !s.builtins[name] {
			names = append(names, name)
		}
	}
	return names
}

// IsBuiltin reports whether name was a global when the state was created.
func (s *State) IsBuiltin(name string) bool {
	return s.builtins[name]
}

// Bridge returns the value converter bound to this state.
func (s *State) Bridge() *Bridge {
	return s.bridge
}

// SetOutput changes where print writes.
func (s *State) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = w
	s.sandbox.SetOutput(w)
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Later calls fail with ErrStateClosed or
// return zero values.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// Reset removes every user global while keeping the libraries.
// Metatables and registry entries are not touched.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	for _, name := range s.userGlobals() {
		s.L.SetGlobal(name, lua.LNil)
	}
	return nil
}

func splitPath(path string) []string {
	return strings.Split(strings.ReplaceAll(path, ":", "."), ".")
}

func lookup(root *lua.LTable, parts []string) lua.LValue {
	var cur lua.LValue = root
	for _, part := range parts {
		tbl, ok := cur.(*lua.LTable)
		if !ok || part == "" {
			return lua.LNil
		}
		cur = tbl.RawGetString(part)
	}
	return cur
}

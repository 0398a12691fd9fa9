package lua

import (
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts Lua execution to safe operations.
type Sandbox struct {
	L *lua.LState

	out io.Writer
}

// NewSandbox creates a new sandbox for the Lua state.
// Output of print goes to out; a nil out discards it.
func NewSandbox(L *lua.LState, out io.Writer) *Sandbox {
	if out == nil {
		out = io.Discard
	}
	return &Sandbox{L: L, out: out}
}

// Install sets up the sandbox restrictions.
func (s *Sandbox) Install() {
	dangerousFuncs := []string{
		"dofile",     // Load and execute file
		"loadfile",   // Load file as function
		"load",       // Load string as function
		"loadstring", // Load string as function (deprecated but may exist)
	}
	for _, name := range dangerousFuncs {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installPrint()
	s.installSafeRequire()
}

// SetOutput changes where print writes.
func (s *Sandbox) SetOutput(out io.Writer) {
	if out == nil {
		out = io.Discard
	}
	s.out = out
}

// installPrint replaces print with one that writes to the sandbox output.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// installSafeRequire replaces require with one that only loads the
// built-in modules and anything registered with PreloadModule.
func (s *Sandbox) installSafeRequire() {
	pkg, ok := s.L.GetGlobal("package").(*lua.LTable)
	if ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	safeModules := map[string]bool{
		"string": true,
		"table":  true,
		"math":   true,
		"bit32":  true,
		"utf8":   true,
	}

	originalRequire := s.L.GetGlobal("require")
	if originalRequire == lua.LNil {
		return
	}

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)

		allowed := safeModules[modName]
		if !allowed && ok {
			if preload, isTbl := L.GetField(pkg, "preload").(*lua.LTable); isTbl {
				allowed = preload.RawGetString(modName) != lua.LNil
			}
		}
		if !allowed {
			// RaiseError does not return.
			L.RaiseError("module %q is not available", modName)
			return 0
		}

		L.Push(originalRequire)
		L.Push(lua.LString(modName))
		L.Call(1, 1)
		return 1
	}))
}

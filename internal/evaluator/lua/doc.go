// Package lua implements the session evaluator on top of gopher-lua.
//
// The package provides:
//   - A sandboxed State with an execution timeout
//   - Go-Lua value conversion (ToGoValue, ToLuaValue)
//   - An Evaluator whose Environment is the set of user globals
//   - Completions and help for dotted global paths
//
// # State
//
//	state, err := lua.NewState(lua.WithTimeout(2 * time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer state.Close()
//
//	values, err := state.Eval("1 + 2")
//
// # Sandbox
//
// The sandbox removes dofile, loadfile, load and loadstring, empties
// package.path, only lets require load built-in modules and routes print
// to the state's output writer. The io, os and debug libraries are never
// opened.
//
// # Evaluator
//
//	ev, err := lua.New(lua.WithOutput(os.Stdout))
//	value, err := ev.Evaluate("x = 40 + 2")
//	value, err = ev.Evaluate("x")          // int64(42)
//	names := ev.Environment().Names()     // [x]
package lua

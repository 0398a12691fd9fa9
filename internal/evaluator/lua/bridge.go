package lua

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Bridge converts values between Go and the Lua state it is bound to.
type Bridge struct {
	L *lua.LState
}

// NewBridge binds a Bridge to L.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGoValue converts a Lua value for the Go side.
//
// Integral numbers become int64 and other numbers float64. A table whose
// keys are exactly 1..n becomes []any, any other table map[string]any.
// A table met again while it is being converted becomes nil. Functions
// are rendered as their display string.
func (b *Bridge) ToGoValue(lv lua.LValue) any {
	return goValue(lv, map[*lua.LTable]bool{})
}

func goValue(lv lua.LValue, open map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return number(v)
	case lua.LString:
		return string(v)
	case *lua.LFunction:
		return v.String()
	case *lua.LUserData:
		return v.Value
	case *lua.LTable:
		if open[v] {
			return nil
		}
		open[v] = true
		defer delete(open, v)
		return tableValue(v, open)
	}
	return nil
}

func number(n lua.LNumber) any {
	f := float64(n)
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return int64(f)
	}
	return f
}

func tableValue(t *lua.LTable, open map[*lua.LTable]bool) any {
	if n := sequenceLen(t); n > 0 {
		list := make([]any, n)
		for i := range list {
			list[i] = goValue(t.RawGetInt(i+1), open)
		}
		return list
	}
	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		key := k.String()
		if kn, ok := k.(lua.LNumber); ok {
			key = fmt.Sprint(number(kn))
		}
		m[key] = goValue(v, open)
	})
	return m
}

// sequenceLen returns n when the keys of t are exactly 1..n, else 0.
func sequenceLen(t *lua.LTable) int {
	count, highest, ok := 0, 0, true
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, isNum := k.(lua.LNumber)
		i := int(kn)
		if !isNum || i < 1 || lua.LNumber(i) != kn {
			ok = false
			return
		}
		highest = max(highest, i)
	})
	if !ok || highest != count {
		return 0
	}
	return count
}

// ToLuaValue converts a Go value for the Lua side. Slices, arrays and
// maps become tables, as do structs, keyed by their json names. Values
// with no Lua counterpart are wrapped as userdata.
func (b *Bridge) ToLuaValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []any:
		t := b.L.CreateTable(len(val), 0)
		for i, e := range val {
			t.RawSetInt(i+1, b.ToLuaValue(e))
		}
		return t
	case map[string]any:
		t := b.L.CreateTable(0, len(val))
		for k, e := range val {
			t.RawSetString(k, b.ToLuaValue(e))
		}
		return t
	}
	return b.reflectValue(reflect.ValueOf(v))
}

func (b *Bridge) reflectValue(rv reflect.Value) lua.LValue {
	switch rv.Kind() {
	case reflect.Invalid:
		return lua.LNil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return b.reflectValue(rv.Elem())
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Slice, reflect.Array:
		t := b.L.CreateTable(rv.Len(), 0)
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, b.reflectValue(rv.Index(i)))
		}
		return t
	case reflect.Map:
		t := b.L.CreateTable(0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSet(b.reflectValue(iter.Key()), b.reflectValue(iter.Value()))
		}
		return t
	case reflect.Struct:
		return b.structTable(rv)
	}
	ud := b.L.NewUserData()
	ud.Value = rv.Interface()
	return ud
}

// structTable keys exported fields by their json name. Fields tagged
// "-" are left out.
func (b *Bridge) structTable(rv reflect.Value) *lua.LTable {
	rt := rv.Type()
	t := b.L.CreateTable(0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}
		t.RawSetString(name, b.reflectValue(rv.Field(i)))
	}
	return t
}

// TableKeys returns the string keys of t, sorted.
func TableKeys(t *lua.LTable) []string {
	var keys []string
	t.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			keys = append(keys, string(s))
		}
	})
	slices.Sort(keys)
	return keys
}

package handler

import "strings"

// Call carries the bound arguments of one invocation.
type Call struct {
	// Args are the positional arguments. For fixed handlers missing
	// optional parameters are filled in from their defaults.
	Args []string
	// Options holds every declared option by name.
	Options map[string]any
	// Raw is the unparsed argument value.
	Raw string
	// Fallback is set when the handler received Raw as its only argument
	// because the parsed arguments did not fit its parameters.
	Fallback bool
}

// Arg returns the i-th positional argument or "".
func (c Call) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Rest joins the positional arguments from i on with spaces.
func (c Call) Rest(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

// Option returns an option value.
func (c Call) Option(name string) (any, bool) {
	v, ok := c.Options[name]
	return v, ok
}

// Bool returns a boolean option, false if unset or of another type.
func (c Call) Bool(name string) bool {
	b, _ := c.Options[name].(bool)
	return b
}

// Text returns a string option, "" if unset or of another type.
func (c Call) Text(name string) string {
	s, _ := c.Options[name].(string)
	return s
}

// Int returns an integer option, 0 if unset or of another type.
func (c Call) Int(name string) int {
	n, _ := c.Options[name].(int)
	return n
}

// Float returns a float option, 0 if unset or of another type.
func (c Call) Float(name string) float64 {
	f, _ := c.Options[name].(float64)
	return f
}

// List returns a list option, nil if unset or of another type.
func (c Call) List(name string) []string {
	l, _ := c.Options[name].([]string)
	return l
}

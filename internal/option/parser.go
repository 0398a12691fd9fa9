package option

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/pflag"
)

// Parsed is the outcome of parsing one argument list.
type Parsed struct {
	// Positional holds the tokens that are not options, in order.
	Positional []string
	// Options maps every declared option name to its parsed value or default.
	Options map[string]any
}

// Parse parses args against specs.
//
// Without usable specs the tokens are returned unchanged as positional
// arguments with an empty option map. Otherwise a parser is synthesized from
// the usable specs; every option appears in the result, either with its
// parsed value or with its default (nil for NoDefault).
func Parse(specs []*Spec, args []string) (Parsed, error) {
	usable := Usable(specs)
	if len(usable) == 0 {
		positional := make([]string, len(args))
		copy(positional, args)
		return Parsed{Positional: positional, Options: map[string]any{}}, nil
	}

	fs := pflag.NewFlagSet("magic", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(true)
	fs.Usage = func() {}

	// Several specs may share a destination; each keeps its own flag.
	type bound struct {
		spec *Spec
		flag string
		get  func() any
	}
	flags := make([]bound, 0, len(usable))
	for _, s := range usable {
		name := flagName(s)
		shorthand := ""
		if s.Short != "" {
			shorthand = s.Short[1:]
		}
		if fs.Lookup(name) != nil || (shorthand != "" && fs.ShorthandLookup(shorthand) != nil) {
			// A later duplicate of an earlier form is ignored by the parser.
			continue
		}

		b := bound{spec: s, flag: name}
		switch s.Type {
		case TypeString:
			v := fs.StringP(name, shorthand, "", s.HelpText)
			b.get = func() any { return *v }
		case TypeInt:
			v := fs.IntP(name, shorthand, 0, s.HelpText)
			b.get = func() any { return *v }
		case TypeFloat:
			v := fs.Float64P(name, shorthand, 0, s.HelpText)
			b.get = func() any { return *v }
		case TypeList:
			v := fs.StringArrayP(name, shorthand, nil, s.HelpText)
			b.get = func() any { return append([]string(nil), (*v)...) }
		default:
			v := fs.BoolP(name, shorthand, false, s.HelpText)
			b.get = func() any { return *v }
		}
		flags = append(flags, b)
	}

	tokens := make([]string, len(args))
	copy(tokens, args)
	if err := fs.Parse(tokens); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			err = fmt.Errorf("unknown flag: help requested")
		}
		return Parsed{}, &UsageError{Args: args, Err: err}
	}

	// A destination takes the value of its changed flag, the last declared
	// one when several were given, else the default of its first spec.
	options := make(map[string]any, len(usable))
	for _, b := range flags {
		key := b.spec.Name()
		if fs.Changed(b.flag) {
			options[key] = b.get()
			continue
		}
		if _, seen := options[key]; !seen {
			options[key] = b.spec.defaultOrNil()
		}
	}
	for _, s := range usable {
		if _, seen := options[s.Name()]; !seen {
			options[s.Name()] = s.defaultOrNil()
		}
	}

	positional := fs.Args()
	if positional == nil {
		positional = []string{}
	}
	return Parsed{Positional: positional, Options: options}, nil
}

// flagName is the name the spec is registered under in the flag set.
func flagName(s *Spec) string {
	if s.Long != "" {
		return s.Long[2:]
	}
	return s.Short[1:]
}

// ParseValue converts text into a value of type t.
func ParseValue(t Type, text string) (any, error) {
	switch t {
	case TypeBool:
		return strconv.ParseBool(text)
	case TypeInt:
		return strconv.Atoi(text)
	case TypeFloat:
		return strconv.ParseFloat(text, 64)
	case TypeList:
		return parseList(text)
	default:
		return text, nil
	}
}

// parseList reads the "[a b c]" rendering of a string slice.
func parseList(text string) ([]string, error) {
	if len(text) < 2 || text[0] != '[' || text[len(text)-1] != ']' {
		return nil, fmt.Errorf("invalid list %q", text)
	}
	inner := text[1 : len(text)-1]
	if inner == "" {
		return []string{}, nil
	}
	return splitFields(inner), nil
}

package option

import (
	"fmt"
	"strings"
)

// Type is the value type of an option.
type Type uint8

const (
	// TypeBool is a flag that takes no value and stores true when present.
	TypeBool Type = iota
	// TypeString stores a single string value.
	TypeString
	// TypeInt stores a single integer value.
	TypeInt
	// TypeFloat stores a single floating point value.
	TypeFloat
	// TypeList collects every occurrence into a string slice.
	TypeList
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

type noDefault struct{}

func (noDefault) String() string { return "NO DEFAULT" }

// NoDefault is the default of a spec that declares none. Options without a
// default parse to nil when absent and show no "[default: ...]" in help.
var NoDefault any = noDefault{}

// Spec declares one option of a magic command.
type Spec struct {
	// Short is the short form, e.g. "-v". Empty if not declared.
	Short string
	// Long is the long form, e.g. "--verbose". Empty if not declared.
	Long string
	// Type is the value type.
	Type Type
	// DefaultValue is used when the option is absent.
	DefaultValue any
	// HelpText describes the option.
	HelpText string
	// Decl is the raw first declaration string.
	Decl string
	// Malformed is set when the declaration is not a usable flag.
	Malformed bool

	dest string
}

// New declares an option from its short and/or long forms.
// The option defaults to TypeBool with NoDefault.
func New(decl ...string) *Spec {
	s := &Spec{
		Type:         TypeBool,
		DefaultValue: NoDefault,
	}
	if len(decl) > 0 {
		s.Decl = decl[0]
	}
	if len(decl) == 0 {
		s.Malformed = true
		return s
	}

	for _, d := range decl {
		switch {
		case isShort(d) && s.Short == "":
			s.Short = d
		case isLong(d) && s.Long == "":
			s.Long = d
		default:
			s.Malformed = true
			return s
		}
	}
	return s
}

// Clone returns a copy of s that shares no mutable state with it.
func (s *Spec) Clone() *Spec {
	c := *s
	if list, ok := s.DefaultValue.([]string); ok {
		c.DefaultValue = append([]string(nil), list...)
	}
	return &c
}

func isShort(d string) bool {
	return len(d) == 2 && d[0] == '-' && d[1] != '-' && d[1] != ' '
}

func isLong(d string) bool {
	if len(d) < 3 || !strings.HasPrefix(d, "--") || d[2] == '-' {
		return false
	}
	return !strings.ContainsAny(d, " \t=")
}

// Bool makes the option a value-less flag.
func (s *Spec) Bool() *Spec {
	s.Type = TypeBool
	return s
}

// Text makes the option take one string value.
func (s *Spec) Text() *Spec {
	s.Type = TypeString
	return s
}

// Int makes the option take one integer value.
func (s *Spec) Int() *Spec {
	s.Type = TypeInt
	return s
}

// Float makes the option take one floating point value.
func (s *Spec) Float() *Spec {
	s.Type = TypeFloat
	return s
}

// List makes the option collect repeated string values.
func (s *Spec) List() *Spec {
	s.Type = TypeList
	return s
}

// Default sets the value used when the option is absent.
func (s *Spec) Default(v any) *Spec {
	s.DefaultValue = v
	return s
}

// Help sets the help text.
func (s *Spec) Help(text string) *Spec {
	s.HelpText = text
	return s
}

// Dest overrides the key the parsed value is stored under.
func (s *Spec) Dest(name string) *Spec {
	s.dest = name
	return s
}

// Name returns the key the parsed value is stored under: the explicit
// destination, else the long form with dashes turned into underscores,
// else the short letter.
func (s *Spec) Name() string {
	switch {
	case s.dest != "":
		return s.dest
	case s.Long != "":
		return strings.ReplaceAll(strings.TrimPrefix(s.Long, "--"), "-", "_")
	case s.Short != "":
		return s.Short[1:]
	default:
		return ""
	}
}

// HasDefault reports whether the spec declares a default.
func (s *Spec) HasDefault() bool {
	_, none := s.DefaultValue.(noDefault)
	return !none
}

// defaultOrNil returns the declared default, or nil for NoDefault.
func (s *Spec) defaultOrNil() any {
	if !s.HasDefault() {
		return nil
	}
	return s.DefaultValue
}

// Forms returns the declared short and long forms separated by a space.
func (s *Spec) Forms() string {
	switch {
	case s.Short != "" && s.Long != "":
		return s.Short + " " + s.Long
	case s.Long != "":
		return s.Long
	default:
		return s.Short
	}
}

// GoString is used by %#v and helps when specs show up in test failures.
func (s *Spec) GoString() string {
	if s.Malformed {
		return fmt.Sprintf("option.Spec{Malformed: %q}", s.Decl)
	}
	return fmt.Sprintf("option.Spec{%s %s default=%v}", s.Forms(), s.Type, s.DefaultValue)
}

// Usable returns the specs that are not malformed, in declaration order.
func Usable(specs []*Spec) []*Spec {
	usable := make([]*Spec, 0, len(specs))
	for _, s := range specs {
		if s != nil && !s.Malformed {
			usable = append(usable, s)
		}
	}
	return usable
}

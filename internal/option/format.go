package option

import (
	"fmt"
	"strings"
)

// helpColumn is the column the help text of an option starts at.
const helpColumn = 15

// HelpHeader opens the option table appended to a handler's documentation.
const HelpHeader = "Options:\n-------"

// FormatValue renders a default value the way it appears in help text.
func FormatValue(v any) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprintf("%v", v)
}

// FormatHelp renders one line of an option table: the forms padded to a
// fixed column, the help text, and the default unless there is none.
// A malformed spec renders as its raw declaration.
func FormatHelp(s *Spec) string {
	if s.Malformed {
		return s.Decl
	}

	out := s.Forms() + " "
	if pad := helpColumn - len(out); pad > 0 {
		out += strings.Repeat(" ", pad)
	}
	out += s.HelpText + " "
	if s.HasDefault() {
		out += "[default: " + FormatValue(s.DefaultValue) + "]"
	}
	return out
}

// HelpBlock renders the option table for specs in declaration order.
// It returns "" when there are no specs.
func HelpBlock(specs []*Spec) string {
	if len(specs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(specs)+1)
	lines = append(lines, HelpHeader)
	for _, s := range specs {
		lines = append(lines, FormatHelp(s))
	}
	return strings.Join(lines, "\n") + "\n"
}

// HelpLine is an option help line read back by ParseHelpLine.
type HelpLine struct {
	Short      string
	Long       string
	Help       string
	Default    string
	HasDefault bool
}

// ParseHelpLine reads a line produced by FormatHelp.
func ParseHelpLine(line string) (HelpLine, error) {
	var hl HelpLine
	rest := strings.TrimRight(line, " \t")

	if strings.HasSuffix(rest, "]") {
		if i := strings.LastIndex(rest, "[default: "); i >= 0 {
			hl.Default = rest[i+len("[default: ") : len(rest)-1]
			hl.HasDefault = true
			rest = strings.TrimRight(rest[:i], " ")
		}
	}

	// Forms start before the help column; a token at or past it belongs
	// to the help text even when it looks like a flag.
	pos := 0
	for {
		skipped := len(rest) - len(strings.TrimLeft(rest, " "))
		if pos+skipped >= helpColumn {
			break
		}
		rest = rest[skipped:]
		pos += skipped
		token, _, _ := strings.Cut(rest, " ")
		if isShort(token) && hl.Short == "" && hl.Long == "" {
			hl.Short = token
		} else if isLong(token) && hl.Long == "" {
			hl.Long = token
		} else {
			break
		}
		rest = rest[len(token):]
		pos += len(token)
	}

	if hl.Short == "" && hl.Long == "" {
		return HelpLine{}, fmt.Errorf("%w: %q", ErrHelpLine, line)
	}
	hl.Help = strings.TrimSpace(rest)
	return hl, nil
}

// Spec rebuilds a spec of type t from the help line, parsing the default.
func (hl HelpLine) Spec(t Type) (*Spec, error) {
	var decl []string
	if hl.Short != "" {
		decl = append(decl, hl.Short)
	}
	if hl.Long != "" {
		decl = append(decl, hl.Long)
	}
	s := New(decl...).Help(hl.Help)
	s.Type = t
	if !hl.HasDefault {
		return s, nil
	}
	if hl.Default == "None" {
		return s.Default(nil), nil
	}
	v, err := ParseValue(t, hl.Default)
	if err != nil {
		return nil, fmt.Errorf("option %s: default %q: %w", s.Forms(), hl.Default, err)
	}
	return s.Default(v), nil
}

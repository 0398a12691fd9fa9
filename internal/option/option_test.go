package option_test

import (
	"testing"

	"github.com/dshills/magicshell/internal/option"
)

func TestNewForms(t *testing.T) {
	tests := []struct {
		name      string
		decl      []string
		short     string
		long      string
		dest      string
		malformed bool
	}{
		{"short and long", []string{"-v", "--verbose"}, "-v", "--verbose", "verbose", false},
		{"long first", []string{"--verbose", "-v"}, "-v", "--verbose", "verbose", false},
		{"long only", []string{"--dry-run"}, "", "--dry-run", "dry_run", false},
		{"short only", []string{"-q"}, "-q", "", "q", false},
		{"no dashes", []string{"verbose"}, "", "", "", true},
		{"double short", []string{"-vv"}, "", "", "", true},
		{"triple dash", []string{"---x"}, "", "", "", true},
		{"bare dashes", []string{"--"}, "", "", "", true},
		{"two shorts", []string{"-v", "-x"}, "-v", "", "", true},
		{"embedded equals", []string{"--a=b"}, "", "", "", true},
		{"nothing", nil, "", "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := option.New(tc.decl...)
			if s.Malformed != tc.malformed {
				t.Fatalf("Malformed = %v, want %v", s.Malformed, tc.malformed)
			}
			if tc.malformed {
				if len(tc.decl) > 0 && s.Decl != tc.decl[0] {
					t.Errorf("Decl = %q, want %q", s.Decl, tc.decl[0])
				}
				return
			}
			if s.Short != tc.short || s.Long != tc.long {
				t.Errorf("forms = %q %q, want %q %q", s.Short, s.Long, tc.short, tc.long)
			}
			if s.Name() != tc.dest {
				t.Errorf("Name() = %q, want %q", s.Name(), tc.dest)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	s := option.New("-n", "--count").Int().Default(3).Help("how many").Dest("n")

	if s.Type != option.TypeInt {
		t.Errorf("Type = %v, want int", s.Type)
	}
	if !s.HasDefault() || s.DefaultValue != 3 {
		t.Errorf("DefaultValue = %v", s.DefaultValue)
	}
	if s.HelpText != "how many" {
		t.Errorf("HelpText = %q", s.HelpText)
	}
	if s.Name() != "n" {
		t.Errorf("Name() = %q, want n", s.Name())
	}
}

func TestDefaultsToBoolWithoutDefault(t *testing.T) {
	s := option.New("-v")
	if s.Type != option.TypeBool {
		t.Errorf("Type = %v, want bool", s.Type)
	}
	if s.HasDefault() {
		t.Error("expected no default")
	}
}

func TestUsable(t *testing.T) {
	good := option.New("-v")
	bad := option.New("oops")
	usable := option.Usable([]*option.Spec{bad, good, nil})
	if len(usable) != 1 || usable[0] != good {
		t.Errorf("Usable = %#v", usable)
	}
}

func TestTypeString(t *testing.T) {
	names := map[option.Type]string{
		option.TypeBool:   "bool",
		option.TypeString: "string",
		option.TypeInt:    "int",
		option.TypeFloat:  "float",
		option.TypeList:   "list",
		option.Type(99):   "unknown",
	}
	for typ, want := range names {
		if typ.String() != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, typ.String(), want)
		}
	}
}

// Package option declares the flags a magic command accepts and parses raw
// argument text against them.
//
// Options are declared with a small builder and attached to a handler when
// it is registered:
//
//	verbose := option.New("-v", "--verbose").Bool().Default(false).Help("print more")
//	count := option.New("-n", "--count").Int().Default(1).Help("repeat count")
//
// A declaration that is not a valid flag (for example "verbose" without
// dashes) does not fail: the spec is marked Malformed, its raw declaration is
// kept for the help text, and Parse ignores it.
//
// Parse synthesizes a pflag.FlagSet from the usable specs on every call, so
// neither the specs nor the handler are ever mutated by parsing:
//
//	parsed, err := option.Parse([]*option.Spec{verbose, count}, []string{"hello", "-v"})
//	// parsed.Positional == []string{"hello"}
//	// parsed.Options    == map[string]any{"verbose": true, "count": 1}
//
// FormatHelp renders a spec as one line of a handler's option table and
// ParseHelpLine reads such a line back.
package option

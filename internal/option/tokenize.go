package option

import (
	"strings"

	"github.com/mattn/go-shellwords"
)

// SplitMode selects how raw argument text is tokenized.
type SplitMode uint8

const (
	// SplitWhitespace splits on runs of whitespace.
	SplitWhitespace SplitMode = iota
	// SplitShell honours single and double quotes and backslash escapes.
	SplitShell
)

// String returns the mode name.
func (m SplitMode) String() string {
	if m == SplitShell {
		return "shell"
	}
	return "whitespace"
}

// Tokenize splits raw argument text. In SplitShell mode text that cannot be
// shell-parsed (an unterminated quote, say) is split on whitespace instead.
func Tokenize(raw string, mode SplitMode) []string {
	if mode == SplitShell {
		p := shellwords.NewParser()
		p.ParseEnv = false
		p.ParseBacktick = false
		if tokens, err := p.Parse(raw); err == nil {
			return tokens
		}
	}
	return splitFields(raw)
}

func splitFields(s string) []string {
	fields := strings.Fields(s)
	if fields == nil {
		return []string{}
	}
	return fields
}

// Args is the argument value of one invocation: either raw text that still
// has to be tokenized, or a list of tokens supplied by the caller.
type Args struct {
	raw       string
	tokens    []string
	tokenized bool
}

// Raw wraps raw argument text.
func Raw(text string) Args {
	return Args{raw: text}
}

// Tokens wraps an already tokenized argument list.
func Tokens(tokens ...string) Args {
	return Args{tokens: append([]string{}, tokens...), tokenized: true}
}

// IsTokenized reports whether the arguments were supplied as tokens.
func (a Args) IsTokenized() bool {
	return a.tokenized
}

// Split returns the argument tokens.
func (a Args) Split(mode SplitMode) []string {
	if a.tokenized {
		return append([]string{}, a.tokens...)
	}
	return Tokenize(a.raw, mode)
}

// String returns the unparsed argument value. Token lists are joined with
// single spaces.
func (a Args) String() string {
	if a.tokenized {
		return strings.Join(a.tokens, " ")
	}
	return a.raw
}

package docfmt

import (
	"strings"
)

// NoIndent is returned by MinIndent when no line after the first carries
// any non-blank text.
const NoIndent = -1

// tabWidth is the tab stop used when expanding tabs.
const tabWidth = 8

// Lines expands tabs and splits text into lines.
// A trailing newline does not produce an extra empty line.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = expandTabs(line)
	}
	return lines
}

// MinIndent returns the smallest leading-whitespace width across all lines
// except the first, ignoring blank lines. It returns NoIndent when there is
// nothing to measure.
func MinIndent(lines []string) int {
	indent := NoIndent
	if len(lines) < 2 {
		return indent
	}
	for _, line := range lines[1:] {
		stripped := strings.TrimLeft(line, " \t")
		if stripped == "" {
			continue
		}
		width := len(line) - len(stripped)
		if indent == NoIndent || width < indent {
			indent = width
		}
	}
	return indent
}

// TrimLines strips the common indentation from text and returns the
// resulting lines. The first line loses all surrounding whitespace, every
// other line loses the common indentation and its trailing whitespace, and
// leading and trailing blank lines are removed.
func TrimLines(text string) []string {
	lines := Lines(text)
	if len(lines) == 0 {
		return nil
	}

	indent := MinIndent(lines)
	trimmed := make([]string, 0, len(lines))
	trimmed = append(trimmed, strings.TrimSpace(lines[0]))
	if indent != NoIndent {
		for _, line := range lines[1:] {
			trimmed = append(trimmed, strings.TrimRight(cut(line, indent), " \t"))
		}
	}

	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == "" {
		trimmed = trimmed[:len(trimmed)-1]
	}
	for len(trimmed) > 0 && trimmed[0] == "" {
		trimmed = trimmed[1:]
	}
	return trimmed
}

// Trim is TrimLines joined back into a single string.
func Trim(text string) string {
	return strings.Join(TrimLines(text), "\n")
}

// Indent returns text prefixed with a newline and re-indented to the
// indentation level of doc, ready to be appended to doc.
func Indent(doc, text string) string {
	if doc == "" {
		return text
	}
	indent := MinIndent(Lines(doc))
	if indent == NoIndent {
		return "\n" + text
	}

	pad := strings.Repeat(" ", indent)
	lines := TrimLines(text)
	var b strings.Builder
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(pad)
		b.WriteString(line)
	}
	return b.String()
}

// cut drops the first n bytes of line, tolerating shorter lines.
func cut(line string, n int) string {
	if n >= len(line) {
		return ""
	}
	return line[n:]
}

func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		switch r {
		case '\t':
			spaces := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

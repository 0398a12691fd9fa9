package kernel

import (
	"strings"

	"github.com/dshills/magicshell/internal/dispatcher/handler"
)

// magicLine is one magic invocation found at the top of a cell.
type magicLine struct {
	Kind handler.Kind
	Name string
	Args string
}

// parsedCell is a cell split into its leading magics and the code after
// them.
type parsedCell struct {
	// Sticky are the %%% lines.
	Sticky []magicLine
	// Line are the % lines in order.
	Line []magicLine
	// Cell is the %% magic, if any. Everything after it is Code.
	Cell *magicLine
	Code string
}

// parseCell consumes magic lines from the top of cell. Blank lines
// between magics are skipped; the first other line starts the code.
func parseCell(cell string) parsedCell {
	var p parsedCell
	lines := strings.Split(cell, "\n")

	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "%") {
			break
		}

		m := parseMagicLine(line)
		if m.Name == "" {
			break
		}
		switch m.Kind {
		case handler.KindSticky:
			p.Sticky = append(p.Sticky, m)
		case handler.KindCell:
			p.Cell = &m
			i++
			p.Code = strings.Join(lines[i:], "\n")
			return p
		default:
			p.Line = append(p.Line, m)
		}
	}

	p.Code = strings.Join(lines[i:], "\n")
	return p
}

// parseMagicLine reads "%name args", "%%name args" or "%%%name args".
func parseMagicLine(line string) magicLine {
	m := magicLine{Kind: handler.KindLine}
	switch {
	case strings.HasPrefix(line, "%%%"):
		m.Kind, line = handler.KindSticky, line[3:]
	case strings.HasPrefix(line, "%%"):
		m.Kind, line = handler.KindCell, line[2:]
	default:
		line = line[1:]
	}

	name, args, _ := strings.Cut(line, " ")
	if tab := strings.IndexByte(name, '\t'); tab >= 0 {
		name, args = name[:tab], name[tab+1:]+" "+args
	}
	m.Name = name
	m.Args = strings.TrimSpace(args)
	return m
}

// helpRequest reports whether cell asks for help, as in "?name",
// "??name", "name?" or "name??". The level is 1 for the doubled forms.
func helpRequest(cell string) (target string, level int, ok bool) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.ContainsAny(s, "\n ") {
		return "", 0, false
	}
	switch {
	case strings.HasPrefix(s, "??"):
		target, level = s[2:], 1
	case strings.HasPrefix(s, "?"):
		target = s[1:]
	case strings.HasSuffix(s, "??"):
		target, level = s[:len(s)-2], 1
	case strings.HasSuffix(s, "?"):
		target = s[:len(s)-1]
	default:
		return "", 0, false
	}
	if target == "" || strings.Contains(target, "?") {
		return "", 0, false
	}
	return target, level, true
}

package app

import (
	"bufio"
	"io"
	"strings"
)

// cellReader splits input into cells.
//
// In line mode every line is a cell, except that a line starting a cell
// magic ("%%name") opens a cell that runs until the next blank line. In
// block mode cells are always separated by blank lines.
type cellReader struct {
	sc    *bufio.Scanner
	block bool
	line  int

	// prompt is called before each line is read; first is false for
	// continuation lines.
	prompt func(first bool)
}

func newCellReader(r io.Reader, block bool) *cellReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &cellReader{sc: sc, block: block}
}

// Next returns the next cell and the line it starts on. It returns
// io.EOF once the input is exhausted.
func (cr *cellReader) Next() (cell string, start int, err error) {
	var lines []string
	for {
		if cr.prompt != nil {
			cr.prompt(len(lines) == 0)
		}
		if !cr.sc.Scan() {
			if err := cr.sc.Err(); err != nil {
				return "", 0, err
			}
			if len(lines) > 0 {
				return strings.Join(lines, "\n"), start, nil
			}
			return "", 0, io.EOF
		}
		cr.line++
		text := strings.TrimRight(cr.sc.Text(), "\r")
		blank := strings.TrimSpace(text) == ""

		if len(lines) == 0 {
			if blank {
				continue
			}
			start = cr.line
			lines = append(lines, text)
			if !cr.block && !opensCell(text) {
				return text, start, nil
			}
			continue
		}

		if blank {
			return strings.Join(lines, "\n"), start, nil
		}
		lines = append(lines, text)
	}
}

// opensCell reports whether line starts a cell magic. Sticky toggles are
// single lines.
func opensCell(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "%%") && !strings.HasPrefix(line, "%%%")
}

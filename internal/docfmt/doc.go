// Package docfmt normalizes the indentation of handler documentation.
//
// Documentation for magic commands is usually written as an indented raw
// string literal. The first line hugs the opening quote while the rest of the
// block carries the indentation of the surrounding source, so the first line
// never takes part in computing the common indentation:
//
//	doc := `Evaluate Lua code.
//
//	    Usage: %lua <code>`
//
//	docfmt.Trim(doc) // "Evaluate Lua code.\n\nUsage: %lua <code>"
//
// Indent performs the reverse operation: it re-indents an appended block
// (such as the option table of a handler) to the indentation level already
// used by a piece of documentation.
package docfmt

package evaluator

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Info describes a completion or help request at a cursor position.
type Info struct {
	// Code is the full text being edited.
	Code string
	// Cursor is the byte offset of the cursor in Code.
	Cursor int
	// Obj is the dotted identifier that ends at the cursor.
	Obj string
	// Start is the offset where Obj begins.
	Start int
	// End is the offset where Obj ends.
	End int
}

// InfoAt builds the request for code with the cursor at offset cursor.
// A negative or out of range cursor is clamped to the end of code.
func InfoAt(code string, cursor int) Info {
	if cursor < 0 || cursor > len(code) {
		cursor = len(code)
	}
	start := cursor
	for start > 0 && isObjByte(code[start-1]) {
		start--
	}
	return Info{
		Code:   code,
		Cursor: cursor,
		Obj:    code[start:cursor],
		Start:  start,
		End:    cursor,
	}
}

func isObjByte(c byte) bool {
	return c == '_' || c == '.' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ParseInfo reads a JSON request of the form
//
//	{"code": "...", "cursor_pos": 12}
//
// Fields obj, start and end are optional; missing ones are derived from
// code and cursor_pos.
func ParseInfo(data []byte) (Info, error) {
	if !gjson.ValidBytes(data) {
		return Info{}, fmt.Errorf("evaluator: invalid info json")
	}
	code := gjson.GetBytes(data, "code")
	if !code.Exists() {
		return Info{}, fmt.Errorf("evaluator: info json has no code")
	}

	cursor := len(code.String())
	if c := gjson.GetBytes(data, "cursor_pos"); c.Exists() {
		cursor = int(c.Int())
	}
	info := InfoAt(code.String(), cursor)

	if obj := gjson.GetBytes(data, "obj"); obj.Exists() {
		info.Obj = obj.String()
	}
	if start := gjson.GetBytes(data, "start"); start.Exists() {
		info.Start = int(start.Int())
	}
	if end := gjson.GetBytes(data, "end"); end.Exists() {
		info.End = int(end.Int())
	}
	return info, nil
}

// JSON encodes the request in the form read by ParseInfo.
func (i Info) JSON() ([]byte, error) {
	data := []byte(`{}`)
	fields := []struct {
		path  string
		value any
	}{
		{"code", i.Code},
		{"cursor_pos", i.Cursor},
		{"obj", i.Obj},
		{"start", i.Start},
		{"end", i.End},
	}
	var err error
	for _, f := range fields {
		data, err = sjson.SetBytes(data, f.path, f.value)
		if err != nil {
			return nil, fmt.Errorf("evaluator: encoding %s: %w", f.path, err)
		}
	}
	return data, nil
}

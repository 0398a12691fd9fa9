package loader

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

const tomlDoc = `
[log]
level = "debug"

[dispatcher]
enableMetrics = true
disabled = ["%env"]

[lua]
timeout = "2s"
`

const yamlDoc = `
log:
  level: debug
dispatcher:
  enableMetrics: true
  disabled: ["%env"]
lua:
  timeout: 2s
`

func TestFileLoaders(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/c.toml", tomlDoc)
	memfs.AddFile("/c.yaml", yamlDoc)
	memfs.AddFile("/c.yml", yamlDoc)

	want := map[string]any{
		"log":        map[string]any{"level": "debug"},
		"dispatcher": map[string]any{"enableMetrics": true, "disabled": []any{"%env"}},
		"lua":        map[string]any{"timeout": "2s"},
	}

	for _, path := range []string{"/c.toml", "/c.yaml", "/c.yml"} {
		t.Run(path, func(t *testing.T) {
			l, err := ForPath(memfs, path)
			if err != nil {
				t.Fatalf("ForPath() error = %v", err)
			}
			got, err := l.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Load() = %#v, want %#v", got, want)
			}
		})
	}
}

func TestYAMLNormalizesInts(t *testing.T) {
	l := NewFile(nil, "", FormatYAML)
	got, err := l.Parse("<test>", strings.NewReader("a:\n  b: 3\n  c: [1, 2]\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := map[string]any{"a": map[string]any{"b": int64(3), "c": []any{int64(1), int64(2)}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %#v, want %#v", got, want)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.toml", FormatTOML, false},
		{"a.TOML", FormatTOML, false},
		{"dir/a.yaml", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.json", "", true},
		{"a", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatOf(%q) = %q, %v", tt.path, got, err)
		}
	}
	if _, err := ForPath(nil, "/config.json"); err == nil {
		t.Error("ForPath(.json) should fail")
	}
}

func TestLoadNonExistent(t *testing.T) {
	memfs := NewMemFS()
	for _, l := range []*File{
		NewFile(memfs, "/missing.toml", FormatTOML),
		NewFile(memfs, "/missing.yaml", FormatYAML),
	} {
		got, err := l.Load()
		if err != nil || got != nil {
			t.Errorf("Load() of a missing file = %v, %v; want nil, nil", got, err)
		}
	}
}

func TestLoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[log\nlevel = 1\n")
	memfs.AddFile("/bad.yaml", "log:\n  level: [unclosed\n")

	for _, path := range []string{"/bad.toml", "/bad.yaml"} {
		l, _ := ForPath(memfs, path)
		_, err := l.Load()
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Load(%s) error = %v, want *ParseError", path, err)
		}
		if perr.Path != path || perr.Line == 0 {
			t.Errorf("ParseError = %+v, want path %s and a line", perr, path)
		}
		if perr.Unwrap() == nil {
			t.Error("ParseError.Unwrap() = nil")
		}
	}
}

func TestParseErrorMessage(t *testing.T) {
	tests := []struct {
		err  ParseError
		want string
	}{
		{ParseError{Path: "a", Line: 2, Column: 3, Message: "m"}, "parse error in a at line 2, column 3: m"},
		{ParseError{Path: "a", Line: 2, Message: "m"}, "parse error in a at line 2: m"},
		{ParseError{Path: "a", Message: "m"}, "parse error in a: m"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":    map[string]any{"level": "info", "format": "text"},
		"kernel": map[string]any{"prompt": "> "},
		"lua":    "scalar",
	}
	src := map[string]any{
		"log": map[string]any{"level": "debug"},
		"lua": map[string]any{"timeout": "1s"},
	}

	got := DeepMerge(dst, src)
	want := map[string]any{
		"log":    map[string]any{"level": "debug", "format": "text"},
		"kernel": map[string]any{"prompt": "> "},
		"lua":    map[string]any{"timeout": "1s"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeepMerge() = %v, want %v", got, want)
	}

	if got := DeepMerge(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("DeepMerge(nil, nil) = %v, want empty map", got)
	}
}

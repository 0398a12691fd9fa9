// Package loader reads configuration sources into generic maps.
//
// Files are parsed as TOML or YAML depending on their extension, and
// environment variables with a common prefix are folded into the same
// nested map shape so the layers can be merged with DeepMerge.
package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads one configuration layer. A source that does not exist
// yields nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is an abstraction for file system operations.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format is the syntax of a config file.
type Format string

// Supported file formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the extension of path: .toml for TOML,
// .yaml and .yml for YAML.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported config format %q", ext)
	}
}

// File loads a config file of one format.
type File struct {
	fs     FileSystem
	path   string
	format Format
}

var _ Loader = (*File)(nil)

// NewFile returns a loader for path. A nil fsys reads the OS file system.
func NewFile(fsys FileSystem, path string, format Format) *File {
	if fsys == nil {
		fsys = DefaultFS()
	}
	return &File{fs: fsys, path: path, format: format}
}

// ForPath returns the loader matching the extension of path.
func ForPath(fsys FileSystem, path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	return NewFile(fsys, path, format), nil
}

// Path returns the file the loader reads.
func (f *File) Path() string { return f.path }

// Format returns the syntax the file is parsed as.
func (f *File) Format() Format { return f.format }

// Load reads and parses the file. A missing file yields nil, nil.
func (f *File) Load() (map[string]any, error) {
	data, err := f.fs.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", f.path, err)
	}
	return f.parse(f.path, data)
}

// Parse reads r to the end and parses it in the loader's format. source
// names the input in a ParseError.
func (f *File) Parse(source string, r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return f.parse(source, data)
}

func (f *File) parse(source string, data []byte) (map[string]any, error) {
	switch f.format {
	case FormatTOML:
		return parseTOML(source, data)
	case FormatYAML:
		return parseYAML(source, data)
	default:
		return nil, fmt.Errorf("unsupported config format %q", f.format)
	}
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeepMerge recursively merges src into dst.
// Values in src override values in dst.
// Maps are merged recursively; other types are replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	if src == nil {
		return dst
	}

	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = srcVal
			continue
		}

		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
		} else {
			dst[key] = srcVal
		}
	}

	return dst
}

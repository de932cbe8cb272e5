// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/pkgloader/pkgloader/pkg/cueutil"
)

const (
	// CUEFileName is the preferred manifest file of a package directory.
	CUEFileName = "include.cue"
	// TOMLFileName is read when a package has no include.cue.
	TOMLFileName = "include.toml"

	// MaxPathLength is the maximum allowed length for a manifest path.
	MaxPathLength = 4096
)

var (
	//go:embed manifest_schema.cue
	manifestSchema string

	// ErrNotFound is returned by Load when the directory has no manifest file.
	ErrNotFound = errors.New("manifest not found")

	// ErrInvalid is the sentinel wrapped by every manifest validation error.
	ErrInvalid = errors.New("invalid manifest")
)

type (
	// File is a style or script file reference. Absolute files are resolved
	// against the package directory and must exist; the others (URLs, web
	// paths) are registered verbatim.
	File struct {
		Path     string `json:"path"               toml:"path"`
		Absolute *bool  `json:"absolute,omitempty" toml:"absolute,omitempty"`
	}

	// Data is an inline style or script block.
	Data struct {
		Data    string `json:"data"              toml:"data"`
		Compile bool   `json:"compile,omitempty" toml:"compile,omitempty"`
	}

	// Manifest is the decoded include file of a package.
	Manifest struct {
		Name        string          `json:"name,omitempty"        toml:"name,omitempty"`
		Initializer string          `json:"initializer,omitempty" toml:"initializer,omitempty"`
		Imports     []string        `json:"imports,omitempty"     toml:"imports,omitempty"`
		Modes       map[string]bool `json:"modes,omitempty"       toml:"modes,omitempty"`
		Units       []string        `json:"units,omitempty"       toml:"units,omitempty"`
		UnitDirs    []string        `json:"unit_dirs,omitempty"   toml:"unit_dirs,omitempty"`
		Styles      []File          `json:"styles,omitempty"      toml:"styles,omitempty"`
		Scripts     []File          `json:"scripts,omitempty"     toml:"scripts,omitempty"`
		StyleData   []Data          `json:"style_data,omitempty"  toml:"style_data,omitempty"`
		ScriptData  []Data          `json:"script_data,omitempty" toml:"script_data,omitempty"`

		// FilePath is the manifest file this value was read from.
		FilePath string `json:"-" toml:"-"`
	}

	// InvalidPathError reports a manifest path that is empty of meaning or
	// escapes the package directory.
	InvalidPathError struct {
		Field  string
		Index  int
		Path   string
		Reason string
	}

	// NameMismatchError reports a manifest name that differs from its directory.
	NameMismatchError struct {
		Name string
		Dir  string
	}
)

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("%s[%d]: %s: %q", e.Field, e.Index, e.Reason, e.Path)
}

// Unwrap returns ErrInvalid for errors.Is() compatibility.
func (e *InvalidPathError) Unwrap() error { return ErrInvalid }

// Error implements the error interface.
func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("manifest name %q does not match package directory %q", e.Name, e.Dir)
}

// Unwrap returns ErrInvalid for errors.Is() compatibility.
func (e *NameMismatchError) Unwrap() error { return ErrInvalid }

// IsAbsolute reports whether the file is a package file. Unset means true.
func (f File) IsAbsolute() bool {
	return f.Absolute == nil || *f.Absolute
}

// Parse decodes an include.cue document and validates it against the
// #Manifest schema.
func Parse(data []byte, filename string) (*Manifest, error) {
	m, err := cueutil.Decode[Manifest](manifestSchema, data, "#Manifest", cueutil.WithFilename(filename))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	m.FilePath = filename
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// ParseTOML decodes an include.toml document. Unknown keys are rejected.
func ParseTOML(data []byte, filename string) (*Manifest, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, filename, err)
	}
	m.FilePath = filename
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &m, nil
}

// Find returns the manifest file of dir, preferring include.cue.
func Find(fs afero.Fs, dir string) (string, error) {
	for _, name := range []string{CUEFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		info, err := fs.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to check manifest at %s: %w", path, err)
		}
	}
	return "", ErrNotFound
}

// Load finds, reads and parses the manifest of the package directory dir.
// When the manifest declares a name it must equal the directory's base name.
func Load(fs afero.Fs, dir string) (*Manifest, error) {
	path, err := Find(fs, dir)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest at %s: %w", path, err)
	}

	var m *Manifest
	if filepath.Base(path) == TOMLFileName {
		m, err = ParseTOML(data, path)
	} else {
		m, err = Parse(data, path)
	}
	if err != nil {
		return nil, err
	}

	if base := filepath.Base(dir); m.Name != "" && m.Name != base {
		return nil, fmt.Errorf("%s: %w", path, &NameMismatchError{Name: m.Name, Dir: base})
	}
	return m, nil
}

// Validate checks the paths CUE cannot: package-relative paths must stay
// inside the package directory.
func (m *Manifest) Validate() error {
	var errs []error
	for i, imp := range m.Imports {
		// Bare names resolve under the packages root; only paths are checked.
		if strings.ContainsAny(imp, `/\`) {
			errs = append(errs, checkRelative("imports", i, imp))
		}
	}
	for i, u := range m.Units {
		errs = append(errs, checkRelative("units", i, u))
	}
	for i, d := range m.UnitDirs {
		errs = append(errs, checkRelative("unit_dirs", i, d))
	}
	for i, f := range m.Styles {
		errs = append(errs, checkFile("styles", i, f))
	}
	for i, f := range m.Scripts {
		errs = append(errs, checkFile("scripts", i, f))
	}
	return errors.Join(errs...)
}

// Resolve joins a package-relative manifest path to the package directory.
func (m *Manifest) Resolve(rel string) string {
	return filepath.Join(m.Dir(), filepath.FromSlash(rel))
}

// Dir returns the package directory the manifest was read from.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.FilePath)
}

func checkFile(field string, i int, f File) error {
	if !f.IsAbsolute() {
		if strings.ContainsRune(f.Path, '\x00') {
			return &InvalidPathError{Field: field, Index: i, Path: f.Path, Reason: "contains null byte"}
		}
		return nil
	}
	return checkRelative(field, i, f.Path)
}

func checkRelative(field string, i int, p string) error {
	switch {
	case p == "":
		return &InvalidPathError{Field: field, Index: i, Path: p, Reason: "empty path"}
	case len(p) > MaxPathLength:
		return &InvalidPathError{Field: field, Index: i, Path: p[:32] + "...", Reason: "path too long"}
	case strings.ContainsRune(p, '\x00'):
		return &InvalidPathError{Field: field, Index: i, Path: p, Reason: "contains null byte"}
	}

	clean := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(clean) || strings.HasPrefix(p, "/") {
		return &InvalidPathError{Field: field, Index: i, Path: p, Reason: "absolute paths not allowed"}
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return &InvalidPathError{Field: field, Index: i, Path: p, Reason: "path escapes the package directory"}
	}
	return nil
}

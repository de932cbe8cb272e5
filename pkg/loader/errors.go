// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a registered file, package directory or manifest does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotDirectory is returned when a configured root path exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrEmptyMode is returned by SetMode and Mode for an empty mode name.
	ErrEmptyMode = errors.New("empty mode name")
	// ErrEmptyData is returned when asset data is empty after normalization.
	ErrEmptyData = errors.New("no asset data to register")
	// ErrUnknownKind is returned for an asset kind other than css or js.
	ErrUnknownKind = errors.New("unknown asset kind")
	// ErrNoProjectPath is returned by ProjectPath when no project root was configured.
	ErrNoProjectPath = errors.New("project path not defined")
	// ErrInvalidManifest is returned when a package manifest cannot be parsed or applied.
	ErrInvalidManifest = errors.New("invalid package manifest")
)

// Error is the single error kind raised by the loader. Err carries one of the
// sentinel errors above (or a wrapped cause) so callers can use errors.Is.
type Error struct {
	// Op is the operation that failed, e.g. "import" or "register code unit".
	Op string
	// Path is the file, directory or name involved (optional).
	Path string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

func newError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}

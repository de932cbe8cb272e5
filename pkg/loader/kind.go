// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"fmt"
	"strings"
)

const (
	// KindStyle identifies CSS assets.
	KindStyle Kind = "css"
	// KindScript identifies JavaScript assets.
	KindScript Kind = "js"
)

type (
	// Kind is an asset kind. It doubles as the extension of compiled cache files.
	Kind string

	// InvalidKindError is returned when an asset kind is not recognized.
	// It wraps ErrUnknownKind for errors.Is() compatibility.
	InvalidKindError struct {
		Value string
	}
)

// Kinds lists the recognized asset kinds in a stable order.
func Kinds() []Kind { return []Kind{KindStyle, KindScript} }

// ParseKind trims and lower-cases s and returns the matching Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if ok, errs := k.IsValid(); !ok {
		return "", errs[0]
	}
	return k, nil
}

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// IsValid returns whether the Kind is one of the defined asset kinds,
// and a list of validation errors if it is not.
func (k Kind) IsValid() (bool, []error) {
	switch k {
	case KindStyle, KindScript:
		return true, nil
	default:
		return false, []error{&InvalidKindError{Value: string(k)}}
	}
}

// Error implements the error interface for InvalidKindError.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("unknown asset kind %q (valid: css, js)", e.Value)
}

// Unwrap returns ErrUnknownKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrUnknownKind }

// SPDX-License-Identifier: MPL-2.0

// Package manifest reads package manifests.
//
// A package is a directory holding an include.cue file (or, as an
// alternative, include.toml) that declares what importing the package
// registers: mode flags, nested imports, code units, and style and script
// assets. CUE manifests are validated against the embedded #Manifest schema;
// TOML manifests carry the same keys. Relative paths are resolved against the
// package directory and may not leave it.
package manifest

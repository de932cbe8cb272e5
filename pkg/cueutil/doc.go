// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Package manifests (include.cue) and the loader configuration file share the
// same flow:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Compile the user document and unify it with the definition
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed manifest_schema.cue
//	var schema string
//
//	m, err := cueutil.Decode[Manifest](schema, data, "#Manifest",
//	    cueutil.WithFilename("include.cue"))
//
// Errors carry the file name and the JSON-style path of the offending field.
package cueutil

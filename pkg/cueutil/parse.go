// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Decode validates data against the definition at schemaPath (e.g. "#Manifest")
// inside schema and decodes the unified value into a new T.
func Decode[T any](schema string, data []byte, schemaPath string, opts ...Option) (*T, error) {
	v, err := Unify(schema, data, schemaPath, opts...)
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	var out T
	if err := v.Decode(&out); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return &out, nil
}

// DecodeMap is Decode for callers that merge the document into a generic map,
// such as viper's MergeConfigMap.
func DecodeMap(schema string, data []byte, schemaPath string, opts ...Option) (map[string]any, error) {
	v, err := Unify(schema, data, schemaPath, opts...)
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	var out map[string]any
	if err := v.Decode(&out); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return out, nil
}

// Unify compiles schema and data, unifies data with the schema definition and
// validates the result.
func Unify(schema string, data []byte, schemaPath string, opts ...Option) (cue.Value, error) {
	o := applyOptions(opts)
	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}
	def := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if def.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, def.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(o.filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), o.filename)
	}

	unified := def.Unify(userValue)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return cue.Value{}, FormatError(err, o.filename)
	}
	return unified, nil
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

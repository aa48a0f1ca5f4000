// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

// Result contains the outcome of a successful decode operation.
type Result[T any] struct {
	// Value is the decoded Go struct.
	Value *T

	// Unified is the unified CUE value, available for advanced use cases
	// such as extracting additional metadata.
	Unified cue.Value
}

// DecodeYAML parses a YAML document, unifies it with the root definition named
// by schemaPath in the embedded schema, validates the result, and decodes it
// into T. Errors carry the CUE path to the offending field so callers can
// surface field-precise diagnostics.
func DecodeYAML[T any](schema string, data []byte, schemaPath string, opts ...Option) (*Result[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	filename := o.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, o.maxFileSize, filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	file, err := yaml.Extract(filename, data)
	if err != nil {
		return nil, FormatError(err, filename)
	}
	docValue := ctx.BuildFile(file)
	if docValue.Err() != nil {
		return nil, FormatError(docValue.Err(), filename)
	}

	return unifyAndDecode[T](schemaValue, docValue, schemaPath, filename, o)
}

// DecodeCUE is the CUE-source counterpart of DecodeYAML, kept for documents
// authored directly in CUE.
func DecodeCUE[T any](schema string, data []byte, schemaPath string, opts ...Option) (*Result[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	filename := o.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, o.maxFileSize, filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	docValue := ctx.CompileBytes(data, cue.Filename(filename))
	if docValue.Err() != nil {
		return nil, FormatError(docValue.Err(), filename)
	}

	return unifyAndDecode[T](schemaValue, docValue, schemaPath, filename, o)
}

func unifyAndDecode[T any](schemaValue, docValue cue.Value, schemaPath, filename string, o options) (*Result[T], error) {
	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(docValue)

	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &Result[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}

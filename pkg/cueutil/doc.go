// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The package consolidates the schema-validated parsing pattern used by the
// modulefile and registry packages:
//
//  1. Compile the embedded schema
//  2. Extract the user document (YAML or CUE) and unify with the schema
//  3. Validate and decode to a Go struct
//
// # Usage
//
//	//go:embed modulefile_schema.cue
//	var schema string
//
//	result, err := cueutil.DecodeYAML[ModuleDefinition](
//	    schema,
//	    documentBytes,
//	    "#Module",
//	    cueutil.WithFilename("module.yml"),
//	)
//	if err != nil {
//	    return nil, err // error includes the CUE path to the offending field
//	}
//	return result.Value, nil
package cueutil

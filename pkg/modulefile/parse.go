// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"fmt"
	"os"

	"deckhand-cli/pkg/cueutil"
)

// DefaultFileName is the conventional name of a module definition document.
const DefaultFileName = "module.yml"

// Parse reads and parses a module definition document from the given path.
func Parse(path string) (*ModuleDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module definition at %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses a module definition document from bytes. The document is
// unified with the embedded CUE schema first, then structurally validated;
// the returned ModuleDefinition is the only form downstream components
// consume.
func ParseBytes(data []byte, path string) (*ModuleDefinition, error) {
	result, err := cueutil.DecodeYAML[ModuleDefinition](
		modulefileSchema,
		data,
		"#Module",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	def := result.Value
	def.FilePath = path

	// Dependencies is always non-nil so no downstream presence checks are
	// needed.
	if def.Dependencies == nil {
		def.Dependencies = []ModuleName{}
	}

	if errs := def.Validate(); errs.HasErrors() {
		return nil, errs
	}

	return def, nil
}

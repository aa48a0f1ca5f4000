// SPDX-License-Identifier: MPL-2.0

package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"deckhand-cli/pkg/cueutil"
	"deckhand-cli/pkg/modulefile"
)

// DefaultFileName is the conventional name of the registry document.
const DefaultFileName = "registry.yml"

//go:embed registry_schema.cue
var registrySchema string

// ErrModuleNotFound is the sentinel error wrapped by NotFoundError.
var ErrModuleNotFound = errors.New("module not found in registry")

type (
	// Registry is an immutable snapshot of the registry document. Construct
	// one via Parse or Load at the start of a generation run and pass it
	// through the pipeline; never re-read the document mid-run.
	Registry struct {
		entries map[modulefile.ModuleName]*Entry
		names   []modulefile.ModuleName
	}

	// NotFoundError is returned when a module name is absent from the
	// registry. Suggestions lists the closest-matching known names.
	NotFoundError struct {
		Name        modulefile.ModuleName
		Suggestions []modulefile.ModuleName
	}

	// rawRegistry is the decode target for the registry document.
	rawRegistry struct {
		Modules map[string]*Entry `json:"modules"`
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("module %q not found in registry", e.Name)
	}
	names := make([]string, len(e.Suggestions))
	for i, s := range e.Suggestions {
		names[i] = string(s)
	}
	return fmt.Sprintf("module %q not found in registry (did you mean %s?)", e.Name, strings.Join(names, ", "))
}

// Unwrap returns ErrModuleNotFound so callers can use errors.Is for
// programmatic detection.
func (e *NotFoundError) Unwrap() error { return ErrModuleNotFound }

// Load reads and parses the registry document at the given path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry at %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses a registry document from bytes into an immutable snapshot.
func Parse(data []byte, path string) (*Registry, error) {
	result, err := cueutil.DecodeYAML[rawRegistry](
		registrySchema,
		data,
		"#Registry",
		cueutil.WithFilename(path),
	)
	if err != nil {
		return nil, err
	}

	raw := result.Value
	reg := &Registry{
		entries: make(map[modulefile.ModuleName]*Entry, len(raw.Modules)),
		names:   make([]modulefile.ModuleName, 0, len(raw.Modules)),
	}
	for name, entry := range raw.Modules {
		entry.Name = modulefile.ModuleName(name)
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		reg.entries[entry.Name] = entry
		reg.names = append(reg.names, entry.Name)
	}
	sort.Slice(reg.names, func(i, j int) bool { return reg.names[i] < reg.names[j] })

	return reg, nil
}

// Resolve looks up a module by name. An unknown name fails with a
// NotFoundError carrying edit-distance suggestions; the resolver's contract
// ends at "which version, from where" and never fetches module content.
func (r *Registry) Resolve(name modulefile.ModuleName) (*Entry, error) {
	if entry, ok := r.entries[name]; ok {
		return entry, nil
	}
	return nil, &NotFoundError{
		Name:        name,
		Suggestions: closestNames(name, r.names),
	}
}

// Has reports whether the registry contains the given module.
func (r *Registry) Has(name modulefile.ModuleName) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns all module names in the snapshot, sorted lexicographically.
func (r *Registry) Names() []modulefile.ModuleName {
	out := make([]modulefile.ModuleName, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of modules in the snapshot.
func (r *Registry) Len() int { return len(r.names) }

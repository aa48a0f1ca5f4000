// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"deckhand-cli/pkg/modulefile"
	"deckhand-cli/pkg/registry"
)

type (
	// Module pairs a registry entry with its parsed definition. The entry's
	// pinned version is the authoritative one for labels and artifacts.
	Module struct {
		Entry      *registry.Entry
		Definition *modulefile.ModuleDefinition
	}

	// Graph is the transitive dependency closure of a set of requested
	// modules, fully loaded and validated. Build is its only constructor.
	Graph struct {
		modules   map[modulefile.ModuleName]*Module
		requested []modulefile.ModuleName
		warnings  []string
	}
)

// Name returns the module's registry name.
func (m *Module) Name() modulefile.ModuleName { return m.Entry.Name }

// Build loads the requested modules and their transitive dependencies through
// the registry and loader. Each module document is loaded and validated at
// most once; the resulting closure is complete, meaning every dependency edge
// points at a loaded module.
//
// A requested name absent from the registry fails with registry.NotFoundError;
// a dependency absent from the registry fails with UnresolvedDependencyError
// naming the requiring module.
func Build(ctx context.Context, names []modulefile.ModuleName, reg *registry.Registry, loader registry.Loader) (*Graph, error) {
	g := &Graph{
		modules:   make(map[modulefile.ModuleName]*Module),
		requested: append([]modulefile.ModuleName{}, names...),
	}

	for _, name := range names {
		entry, err := reg.Resolve(name)
		if err != nil {
			return nil, err
		}
		if err := g.load(ctx, entry, reg, loader); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// BuildAll loads every module in the registry. Used by the --all generation
// mode, where the full catalog is rendered in one plan.
func BuildAll(ctx context.Context, reg *registry.Registry, loader registry.Loader) (*Graph, error) {
	return Build(ctx, reg.Names(), reg, loader)
}

// load fetches, parses, and validates one module's definition, then recurses
// into its dependencies. Already-loaded modules are skipped, which both
// memoizes the work and lets shared dependencies converge.
func (g *Graph) load(ctx context.Context, entry *registry.Entry, reg *registry.Registry, loader registry.Loader) error {
	if _, ok := g.modules[entry.Name]; ok {
		return nil
	}

	data, err := loader.Load(ctx, entry.Name, entry.Version)
	if err != nil {
		return err
	}
	def, err := modulefile.ParseBytes(data, string(entry.Name)+"/"+modulefile.DefaultFileName)
	if err != nil {
		return err
	}

	if def.Name != entry.Name {
		return fmt.Errorf("module %q: definition declares name %q", entry.Name, def.Name)
	}
	if def.Version != entry.Version {
		g.warn("module %q: definition declares version %s, %s the registry pin %s (registry wins)",
			entry.Name, def.Version, versionRelation(def.Version, entry.Version), entry.Version)
	}
	if entry.Deprecated() {
		g.warn("module %q is deprecated", entry.Name)
	}

	g.modules[entry.Name] = &Module{Entry: entry, Definition: def}

	for _, dep := range def.Dependencies {
		depEntry, err := reg.Resolve(dep)
		if err != nil {
			var notFound *registry.NotFoundError
			if errors.As(err, &notFound) {
				return &UnresolvedDependencyError{
					Missing:     dep,
					RequiredBy:  entry.Name,
					Suggestions: notFound.Suggestions,
				}
			}
			return err
		}
		if err := g.load(ctx, depEntry, reg, loader); err != nil {
			return err
		}
	}

	return nil
}

func (g *Graph) warn(format string, args ...any) {
	g.warnings = append(g.warnings, fmt.Sprintf(format, args...))
}

// Module returns the loaded module for the given name, or nil if the name is
// not part of the closure.
func (g *Graph) Module(name modulefile.ModuleName) *Module {
	return g.modules[name]
}

// Len returns the number of modules in the closure.
func (g *Graph) Len() int { return len(g.modules) }

// Requested returns the explicitly requested module names, in request order.
func (g *Graph) Requested() []modulefile.ModuleName {
	out := make([]modulefile.ModuleName, len(g.requested))
	copy(out, g.requested)
	return out
}

// Names returns every module name in the closure, sorted lexicographically.
func (g *Graph) Names() []modulefile.ModuleName {
	names := make([]modulefile.ModuleName, 0, len(g.modules))
	for name := range g.modules {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Warnings returns the warnings recorded while building the closure.
func (g *Graph) Warnings() []string {
	out := make([]string, len(g.warnings))
	copy(out, g.warnings)
	return out
}

// versionRelation describes how a definition's declared version compares to
// the registry pin, for the mismatch warning. Both values passed validation
// upstream, so a parse failure degrades to the neutral wording.
func versionRelation(declared, pin modulefile.Version) string {
	declaredV, err := declared.Parsed()
	if err != nil {
		return "differing from"
	}
	pinV, err := pin.Parsed()
	if err != nil {
		return "differing from"
	}
	switch {
	case declaredV.GreaterThan(pinV):
		return "newer than"
	default:
		return "older than"
	}
}

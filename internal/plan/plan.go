// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"fmt"

	"deckhand-cli/internal/dag"
	"deckhand-cli/pkg/modulefile"
)

// DeploymentPlan is a topologically ordered sequence of modules for one
// deployment target. Every dependency appears before its dependents; the
// order is fully deterministic, identical plans come from identical inputs
// regardless of request order.
type DeploymentPlan struct {
	// Target is the deployment target the plan was computed for.
	Target modulefile.Target
	// Modules is the full closure in plan order, including modules that do
	// not support Target (they still constrain ordering).
	Modules []*Module
	// requested marks the explicitly requested modules.
	requested map[modulefile.ModuleName]bool
	warnings  []string
}

// Plan orders the closure for the given target. Explicitly requested modules
// that do not support the target fail hard with TargetUnsupportedError;
// transitively pulled dependencies that lack the target stay in the plan for
// ordering but are flagged with a warning and excluded from Emittable.
// Cycles fail with dag.CycleError carrying the full cycle path.
func (g *Graph) Plan(target modulefile.Target) (*DeploymentPlan, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	requested := make(map[modulefile.ModuleName]bool, len(g.requested))
	for _, name := range g.requested {
		requested[name] = true
		if !g.modules[name].Definition.Deployment.Supports(target) {
			return nil, &TargetUnsupportedError{Module: name, Target: target}
		}
	}

	graph := dag.New()
	for name, mod := range g.modules {
		graph.AddNode(string(name))
		for _, dep := range mod.Definition.Dependencies {
			graph.AddEdge(string(dep), string(name))
		}
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	p := &DeploymentPlan{
		Target:    target,
		Modules:   make([]*Module, 0, len(order)),
		requested: requested,
		warnings:  g.Warnings(),
	}
	for _, name := range order {
		mod := g.modules[modulefile.ModuleName(name)]
		p.Modules = append(p.Modules, mod)
		if !mod.Definition.Deployment.Supports(target) {
			p.warn("module %q does not support the %s target and is excluded from the emitted output", name, target)
		}
	}

	return p, nil
}

func (p *DeploymentPlan) warn(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// Emittable returns the plan's modules that support the target, in plan
// order. These are the modules the emitters render.
func (p *DeploymentPlan) Emittable() []*Module {
	out := make([]*Module, 0, len(p.Modules))
	for _, mod := range p.Modules {
		if mod.Definition.Deployment.Supports(p.Target) {
			out = append(out, mod)
		}
	}
	return out
}

// Requested reports whether the given module was explicitly requested rather
// than pulled in as a dependency.
func (p *DeploymentPlan) Requested(name modulefile.ModuleName) bool {
	return p.requested[name]
}

// Names returns the plan order as module names.
func (p *DeploymentPlan) Names() []modulefile.ModuleName {
	names := make([]modulefile.ModuleName, len(p.Modules))
	for i, mod := range p.Modules {
		names[i] = mod.Name()
	}
	return names
}

// Warnings returns the warnings accumulated while building and ordering the
// closure.
func (p *DeploymentPlan) Warnings() []string {
	out := make([]string, len(p.warnings))
	copy(out, p.warnings)
	return out
}

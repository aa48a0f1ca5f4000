// SPDX-License-Identifier: MPL-2.0

// Package ansible renders a deployment plan into an Ansible deployment
// artifact: an ordered role list plus the merged variables document. Task
// YAML is out of scope; the roles themselves live in the module sources.
package ansible

import (
	"bytes"
	"sort"

	"gopkg.in/yaml.v3"

	"deckhand-cli/internal/emit"
	"deckhand-cli/internal/plan"
)

// ArtifactName is the conventional output file name.
const ArtifactName = "deploy.yml"

type (
	// Document is the emitted artifact: roles in provisioning order and the
	// merged variables every role sees.
	Document struct {
		Roles []Role            `yaml:"roles"`
		Vars  map[string]string `yaml:"vars,omitempty"`
	}

	// Role is one ordered provisioning step.
	Role struct {
		// Role is the module name, which doubles as the role name.
		Role string `yaml:"role"`
		// Version is the registry-pinned module version.
		Version string `yaml:"version"`
		// Packages is the union of system packages across the module's
		// platform matrix, sorted and deduplicated.
		Packages []string `yaml:"packages,omitempty"`
	}
)

// Emit renders the plan's ansible-capable modules. Role order matches plan
// order exactly; the variables section is the merged environment defaults.
// The returned bytes are the complete artifact, header included.
func Emit(p *plan.DeploymentPlan, merged *plan.MergedResources) ([]byte, error) {
	modules := p.Emittable()
	if len(modules) == 0 {
		return nil, &emit.EmissionError{Artifact: ArtifactName, Reason: "plan contains no ansible-capable modules"}
	}

	doc := &Document{Roles: make([]Role, 0, len(modules))}
	for _, mod := range modules {
		doc.Roles = append(doc.Roles, Role{
			Role:     string(mod.Name()),
			Version:  string(mod.Entry.Version),
			Packages: collectPackages(mod),
		})
	}

	if len(merged.Env) > 0 {
		doc.Vars = make(map[string]string, len(merged.Env))
		for name, value := range merged.Env {
			doc.Vars[string(name)] = value
		}
	}

	var buf bytes.Buffer
	buf.WriteString(emit.Header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, &emit.EmissionError{Artifact: ArtifactName, Reason: err.Error()}
	}
	if err := enc.Close(); err != nil {
		return nil, &emit.EmissionError{Artifact: ArtifactName, Reason: err.Error()}
	}
	return buf.Bytes(), nil
}

func collectPackages(mod *plan.Module) []string {
	seen := make(map[string]bool)
	var packages []string
	for _, platform := range mod.Definition.Platforms {
		for _, pkg := range platform.Packages {
			if !seen[pkg] {
				seen[pkg] = true
				packages = append(packages, pkg)
			}
		}
	}
	sort.Strings(packages)
	return packages
}

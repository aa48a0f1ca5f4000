// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"fmt"
	"sort"

	"deckhand-cli/pkg/modulefile"
)

type (
	// PortClaim records which module claimed a (port, protocol) pair.
	PortClaim struct {
		Spec   modulefile.PortSpec
		Module modulefile.ModuleName
	}

	// VolumeClaim records which module mounted a container path.
	VolumeClaim struct {
		Mount  modulefile.VolumeMount
		Module modulefile.ModuleName
	}

	// MergedResources is the union of every module's resource claims in a
	// plan, with conflicts ruled out. Health checks and resource limits stay
	// per-module and are not part of the merge.
	MergedResources struct {
		// Ports holds every port claim, sorted by key for deterministic output.
		Ports []PortClaim
		// Volumes holds every volume claim, sorted by container target.
		Volumes []VolumeClaim
		// Env maps variable names to their effective defaults. When modules
		// disagree, the later module in plan order wins.
		Env map[modulefile.EnvVarName]string
		// EnvOwner records which module supplied each effective default.
		EnvOwner map[modulefile.EnvVarName]modulefile.ModuleName
		// Warnings lists the non-fatal findings, notably environment default
		// divergences.
		Warnings []string
	}
)

// Merge folds the plan's per-module resource claims into one set. Two modules
// claiming the same (port, protocol) pair is fatal; two modules mounting the
// same container path is fatal. Two modules declaring the same environment
// variable with differing defaults is recoverable: the later module wins and
// a warning is recorded. Identical defaults merge silently.
func Merge(p *DeploymentPlan) (*MergedResources, error) {
	merged := &MergedResources{
		Env:      make(map[modulefile.EnvVarName]string),
		EnvOwner: make(map[modulefile.EnvVarName]modulefile.ModuleName),
	}

	portOwner := make(map[string]modulefile.ModuleName)
	volumeOwner := make(map[string]modulefile.ModuleName)

	for _, mod := range p.Modules {
		name := mod.Name()
		def := mod.Definition

		for _, port := range def.Network {
			key := port.Key()
			if first, claimed := portOwner[key]; claimed {
				return nil, &PortConflictError{Key: key, First: first, Second: name}
			}
			portOwner[key] = name
			merged.Ports = append(merged.Ports, PortClaim{Spec: port, Module: name})
		}

		for _, vol := range def.Storage.Volumes {
			if first, claimed := volumeOwner[vol.Target]; claimed {
				return nil, &VolumeConflictError{Target: vol.Target, First: first, Second: name}
			}
			volumeOwner[vol.Target] = name
			merged.Volumes = append(merged.Volumes, VolumeClaim{Mount: vol, Module: name})
		}

		for _, env := range def.Environment {
			if env.Default == "" {
				continue
			}
			prev, declared := merged.Env[env.Name]
			if declared && prev != env.Default {
				merged.Warnings = append(merged.Warnings, fmt.Sprintf(
					"environment variable %s: default %q from module %q overrides %q from module %q",
					env.Name, env.Default, name, prev, merged.EnvOwner[env.Name]))
			}
			merged.Env[env.Name] = env.Default
			merged.EnvOwner[env.Name] = name
		}
	}

	sort.Slice(merged.Ports, func(i, j int) bool {
		return merged.Ports[i].Spec.Key() < merged.Ports[j].Spec.Key()
	})
	sort.Slice(merged.Volumes, func(i, j int) bool {
		return merged.Volumes[i].Mount.Target < merged.Volumes[j].Mount.Target
	})

	return merged, nil
}

// SPDX-License-Identifier: MPL-2.0

// Package generate orchestrates the full pipeline: registry snapshot, module
// loading, planning, resource merge, and artifact emission. No partial output
// is ever written; the artifact reaches disk only after every stage succeeds.
package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"deckhand-cli/internal/emit/ansible"
	"deckhand-cli/internal/emit/compose"
	"deckhand-cli/internal/plan"
	"deckhand-cli/pkg/modulefile"
	"deckhand-cli/pkg/registry"
)

type (
	// Request is one generation run's input.
	Request struct {
		// Modules are the explicitly requested module names. Ignored when All
		// is set.
		Modules []modulefile.ModuleName
		// All generates over every module in the registry snapshot.
		All bool
		// Target selects the emitter.
		Target modulefile.Target
		// RegistryPath is the registry document location.
		RegistryPath string
		// ModulesDir is the directory holding per-module definitions.
		ModulesDir string
		// OutputPath is the artifact destination. Empty means the emitter's
		// conventional name under OutputDir.
		OutputPath string
		// OutputDir is the directory for the conventional artifact name when
		// OutputPath is unset. Empty means the current directory.
		OutputDir string
		// EnvOverridesPath is an optional TOML file of environment overrides
		// for the Compose emitter.
		EnvOverridesPath string
		// DefaultNetwork is the shared network name for Compose output.
		DefaultNetwork string
		// ValidateOnly stops after planning and merging, writing nothing.
		ValidateOnly bool
	}

	// Result describes a completed run.
	Result struct {
		// Plan is the computed deployment plan.
		Plan *plan.DeploymentPlan
		// Merged is the conflict-free resource set.
		Merged *plan.MergedResources
		// Artifact is the rendered document; nil in validate-only runs.
		Artifact []byte
		// OutputPath is where the artifact was written; empty in
		// validate-only runs.
		OutputPath string
		// Warnings aggregates planning and merge warnings.
		Warnings []string
	}
)

// Run executes the pipeline for the given request.
func Run(ctx context.Context, logger *log.Logger, req Request) (*Result, error) {
	logger.Debug("loading registry", "path", req.RegistryPath)
	reg, err := registry.Load(req.RegistryPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("registry loaded", "modules", reg.Len())

	loader := registry.NewDirLoader(req.ModulesDir)

	var graph *plan.Graph
	if req.All {
		graph, err = plan.BuildAll(ctx, reg, loader)
	} else {
		graph, err = plan.Build(ctx, req.Modules, reg, loader)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("dependency closure built", "modules", graph.Len())

	p, err := graph.Plan(req.Target)
	if err != nil {
		return nil, err
	}
	logger.Debug("plan computed", "order", p.Names())

	merged, err := plan.Merge(p)
	if err != nil {
		return nil, err
	}

	result := &Result{Plan: p, Merged: merged}
	result.Warnings = append(result.Warnings, p.Warnings()...)
	result.Warnings = append(result.Warnings, merged.Warnings...)
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}

	if req.ValidateOnly {
		return result, nil
	}

	artifact, artifactName, err := emitArtifact(p, merged, req)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(req.OutputDir, artifactName)
	}
	if err := writeAtomic(outputPath, artifact); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	result.OutputPath = outputPath
	logger.Info("artifact written", "path", outputPath, "services", len(p.Emittable()))

	return result, nil
}

func emitArtifact(p *plan.DeploymentPlan, merged *plan.MergedResources, req Request) ([]byte, string, error) {
	switch req.Target {
	case modulefile.TargetDocker:
		overrides, err := LoadEnvOverrides(req.EnvOverridesPath)
		if err != nil {
			return nil, "", err
		}
		artifact, err := compose.Emit(p, merged, compose.Options{
			DefaultNetwork: req.DefaultNetwork,
			EnvOverrides:   overrides,
		})
		return artifact, compose.ArtifactName, err
	case modulefile.TargetAnsible:
		artifact, err := ansible.Emit(p, merged)
		return artifact, ansible.ArtifactName, err
	default:
		return nil, "", &modulefile.InvalidTargetError{Value: req.Target}
	}
}

// writeAtomic writes the artifact through a temp file in the destination
// directory, then renames it into place. A failed run never leaves a
// truncated artifact behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

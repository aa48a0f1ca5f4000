// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"deckhand-cli/internal/dag"
	"deckhand-cli/internal/emit"
	"deckhand-cli/internal/issue"
	"deckhand-cli/internal/plan"
	"deckhand-cli/pkg/modulefile"
	"deckhand-cli/pkg/registry"
)

// Exit codes returned by the CLI. Each failure category gets a distinct
// code so callers scripting around deckhand can branch on specific ones.
const (
	exitGeneric           = 1
	exitSchemaValidation  = 2
	exitModuleNotFound    = 3
	exitUnresolvedDep     = 4
	exitDependencyCycle   = 5
	exitPortConflict      = 6
	exitVolumeConflict    = 7
	exitTargetUnsupported = 8
	exitEmissionFailed    = 9
)

// classifyError maps a pipeline error to its exit code and the issue
// catalog entry to render alongside it. A zero issue ID means no catalog
// entry applies.
func classifyError(err error) (int, issue.Id) {
	var (
		validationErrs modulefile.ValidationErrors
		cycleErr       *dag.CycleError
		pathErr        *fs.PathError
	)

	switch {
	case errors.As(err, &validationErrs):
		return exitSchemaValidation, issue.ModuleParseErrorId
	case errors.Is(err, plan.ErrUnresolvedDependency):
		return exitUnresolvedDep, issue.UnresolvedDependencyId
	case errors.Is(err, registry.ErrModuleNotFound),
		errors.Is(err, registry.ErrContentNotFound):
		return exitModuleNotFound, issue.ModuleNotFoundId
	case errors.As(err, &cycleErr):
		return exitDependencyCycle, issue.DependencyCycleId
	case errors.Is(err, plan.ErrPortConflict):
		return exitPortConflict, issue.PortConflictId
	case errors.Is(err, plan.ErrVolumeConflict):
		return exitVolumeConflict, issue.VolumeConflictId
	case errors.Is(err, plan.ErrTargetUnsupported):
		return exitTargetUnsupported, issue.TargetUnsupportedId
	case errors.Is(err, emit.ErrEmission):
		return exitEmissionFailed, issue.EmissionFailedId
	case errors.As(err, &pathErr):
		// Registry or module file missing on disk.
		return exitGeneric, issue.RegistryNotFoundId
	default:
		return exitGeneric, 0
	}
}

// wrapPipelineError converts a pipeline error into an ExitError carrying a
// ServiceError, so the fang exit handler can pick up the right exit code
// after the error has been rendered.
func wrapPipelineError(err error) error {
	code, issueID := classifyError(err)

	message := err.Error()
	if actionable := actionableFor(err); actionable != nil {
		message = actionable.Format(verbose)
	}

	svcErr := newServiceError(err, issueID, ErrorStyle.Render("Error: "+message)+"\n")
	return &ExitError{Code: code, Err: svcErr}
}

// actionableFor lifts errors that carry lookup suggestions into an
// ActionableError, so the rendered message offers concrete next steps
// instead of a bare failure line. Returns nil for everything else.
func actionableFor(err error) *issue.ActionableError {
	var (
		notFound   *registry.NotFoundError
		unresolved *plan.UnresolvedDependencyError
	)

	switch {
	case errors.As(err, &notFound):
		ctx := issue.NewErrorContext().
			WithOperation("resolve module").
			WithResource(string(notFound.Name)).
			Wrap(err)
		for _, name := range notFound.Suggestions {
			ctx.WithSuggestion(fmt.Sprintf("Did you mean %q?", name))
		}
		return ctx.Build()
	case errors.As(err, &unresolved):
		ctx := issue.NewErrorContext().
			WithOperation("resolve dependencies of module " + string(unresolved.RequiredBy)).
			WithResource(string(unresolved.Missing)).
			Wrap(err)
		for _, name := range unresolved.Suggestions {
			ctx.WithSuggestion(fmt.Sprintf("Did you mean %q?", name))
		}
		ctx.WithSuggestion(fmt.Sprintf("Add %q to the registry, or drop the dependency from %q", unresolved.Missing, unresolved.RequiredBy))
		return ctx.Build()
	default:
		return nil
	}
}

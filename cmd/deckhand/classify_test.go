// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"deckhand-cli/internal/dag"
	"deckhand-cli/internal/emit"
	"deckhand-cli/internal/issue"
	"deckhand-cli/internal/plan"
	"deckhand-cli/pkg/modulefile"
	"deckhand-cli/pkg/registry"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantIssueID issue.Id
	}{
		{
			name: "validation errors map to schema validation exit",
			err: modulefile.ValidationErrors{
				{Field: "name", Message: "invalid", Severity: modulefile.SeverityError},
			},
			wantCode:    exitSchemaValidation,
			wantIssueID: issue.ModuleParseErrorId,
		},
		{
			name:        "registry miss maps to module not found",
			err:         &registry.NotFoundError{Name: "apa"},
			wantCode:    exitModuleNotFound,
			wantIssueID: issue.ModuleNotFoundId,
		},
		{
			name:        "missing module content maps to module not found",
			err:         &registry.ContentNotFoundError{Name: "apache", Version: "2.4.0", Path: "/modules/apache/module.yml"},
			wantCode:    exitModuleNotFound,
			wantIssueID: issue.ModuleNotFoundId,
		},
		{
			name:        "unresolved dependency maps to its own exit code",
			err:         &plan.UnresolvedDependencyError{Missing: "mysql", RequiredBy: "php"},
			wantCode:    exitUnresolvedDep,
			wantIssueID: issue.UnresolvedDependencyId,
		},
		{
			name:        "cycle maps to dependency cycle exit",
			err:         fmt.Errorf("planning failed: %w", &dag.CycleError{Cycle: []string{"a", "b", "a"}}),
			wantCode:    exitDependencyCycle,
			wantIssueID: issue.DependencyCycleId,
		},
		{
			name:        "port conflict",
			err:         &plan.PortConflictError{Key: "80/tcp", First: "apache", Second: "nginx"},
			wantCode:    exitPortConflict,
			wantIssueID: issue.PortConflictId,
		},
		{
			name:        "volume conflict",
			err:         &plan.VolumeConflictError{Target: "/srv/www", First: "apache", Second: "php"},
			wantCode:    exitVolumeConflict,
			wantIssueID: issue.VolumeConflictId,
		},
		{
			name:        "unsupported target",
			err:         &plan.TargetUnsupportedError{Module: "backup", Target: modulefile.TargetDocker},
			wantCode:    exitTargetUnsupported,
			wantIssueID: issue.TargetUnsupportedId,
		},
		{
			name:        "emission failure",
			err:         fmt.Errorf("compose: %w", emit.ErrEmission),
			wantCode:    exitEmissionFailed,
			wantIssueID: issue.EmissionFailedId,
		},
		{
			name:        "unknown error falls back to generic exit",
			err:         errors.New("something else"),
			wantCode:    exitGeneric,
			wantIssueID: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, issueID := classifyError(tt.err)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if issueID != tt.wantIssueID {
				t.Errorf("issueID = %d, want %d", issueID, tt.wantIssueID)
			}
		})
	}
}

func TestActionableFor_RegistryMissWithSuggestions(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("building closure: %w", &registry.NotFoundError{
		Name:        "apahce",
		Suggestions: []modulefile.ModuleName{"apache"},
	})

	actionable := actionableFor(err)
	if actionable == nil {
		t.Fatal("expected an ActionableError for a registry miss with suggestions")
	}
	if !actionable.HasSuggestions() {
		t.Fatal("expected suggestions to be carried over")
	}

	formatted := actionable.Format(false)
	if !strings.Contains(formatted, "resolve module") {
		t.Errorf("Format() = %q, want the operation named", formatted)
	}
	if !strings.Contains(formatted, `Did you mean "apache"?`) {
		t.Errorf("Format() = %q, want a did-you-mean suggestion", formatted)
	}
}

func TestActionableFor_UnresolvedDependency(t *testing.T) {
	t.Parallel()

	err := &plan.UnresolvedDependencyError{
		Missing:     "mysql",
		RequiredBy:  "php",
		Suggestions: []modulefile.ModuleName{"mariadb"},
	}

	actionable := actionableFor(err)
	if actionable == nil {
		t.Fatal("expected an ActionableError for an unresolved dependency")
	}

	formatted := actionable.Format(false)
	for _, want := range []string{"php", "mysql", `Did you mean "mariadb"?`, "Add"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() = %q, missing %q", formatted, want)
		}
	}
}

func TestActionableFor_OtherErrorsStayPlain(t *testing.T) {
	t.Parallel()

	if actionable := actionableFor(errors.New("disk full")); actionable != nil {
		t.Errorf("actionableFor() = %v, want nil for errors without suggestions", actionable)
	}
}

func TestWrapPipelineError_StyledMessageCarriesSuggestions(t *testing.T) {
	t.Parallel()

	wrapped := wrapPipelineError(&registry.NotFoundError{
		Name:        "apahce",
		Suggestions: []modulefile.ModuleName{"apache"},
	})

	var exitErr *ExitError
	if !errors.As(wrapped, &exitErr) {
		t.Fatalf("expected *ExitError, got %T", wrapped)
	}
	if exitErr.Code != exitModuleNotFound {
		t.Errorf("Code = %d, want %d", exitErr.Code, exitModuleNotFound)
	}

	var svcErr *ServiceError
	if !errors.As(exitErr.Err, &svcErr) {
		t.Fatalf("expected ServiceError inside ExitError, got %T", exitErr.Err)
	}
	if !strings.Contains(svcErr.StyledMessage, `Did you mean "apache"?`) {
		t.Errorf("StyledMessage = %q, want the did-you-mean suggestion rendered", svcErr.StyledMessage)
	}
}

func TestWrapPipelineError(t *testing.T) {
	t.Parallel()

	underlying := &plan.PortConflictError{Key: "80/tcp", First: "apache", Second: "nginx"}
	wrapped := wrapPipelineError(underlying)

	var exitErr *ExitError
	if !errors.As(wrapped, &exitErr) {
		t.Fatalf("expected *ExitError, got %T", wrapped)
	}
	if exitErr.Code != exitPortConflict {
		t.Errorf("Code = %d, want %d", exitErr.Code, exitPortConflict)
	}

	var svcErr *ServiceError
	if !errors.As(exitErr.Err, &svcErr) {
		t.Fatalf("expected ServiceError inside ExitError, got %T", exitErr.Err)
	}
	if svcErr.IssueID != issue.PortConflictId {
		t.Errorf("IssueID = %d, want %d", svcErr.IssueID, issue.PortConflictId)
	}
	if !errors.Is(wrapped, plan.ErrPortConflict) {
		t.Error("errors.Is should still see the port conflict sentinel through the wrapping")
	}
}

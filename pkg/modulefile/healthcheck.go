// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ErrInvalidHealthCheck is the sentinel error wrapped by InvalidHealthCheckError.
var ErrInvalidHealthCheck = errors.New("invalid health check")

type (
	// DockerHealthCheck is the health-check definition carried into a Compose
	// service, unmerged: each module's service keeps its own check.
	DockerHealthCheck struct {
		// Test is the shell command Compose runs inside the container.
		Test string `json:"test"`
		// Interval is the time between checks. Emitted verbatim when set;
		// when unset the container engine's own default applies.
		Interval Duration `json:"interval,omitempty"`
		// Timeout is the per-check timeout. Emitted verbatim when set; when
		// unset the container engine's own default applies.
		Timeout Duration `json:"timeout,omitempty"`
		// Retries is the number of consecutive failures before unhealthy.
		Retries int `json:"retries,omitempty"`
	}

	// AnsibleHealthCheck is the post-provisioning check definition for the
	// ansible target.
	AnsibleHealthCheck struct {
		// Command is the shell command run on the provisioned host.
		Command string `json:"command"`
		// ExpectedOutput, when set, must appear in the command's output.
		ExpectedOutput string `json:"expected_output,omitempty"`
	}

	// InvalidHealthCheckError is returned when a health-check definition is
	// structurally invalid or its command does not parse as POSIX shell.
	InvalidHealthCheckError struct {
		Target Target
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidHealthCheckError) Error() string {
	return fmt.Sprintf("invalid %s health check: %s", e.Target, e.Reason)
}

// Unwrap returns ErrInvalidHealthCheck so callers can use errors.Is for
// programmatic detection.
func (e *InvalidHealthCheckError) Unwrap() error { return ErrInvalidHealthCheck }

// Validate returns nil if the DockerHealthCheck is valid. The Test command is
// parsed as POSIX shell so a malformed check fails generation instead of
// deployment.
func (h DockerHealthCheck) Validate() error {
	if strings.TrimSpace(h.Test) == "" {
		return &InvalidHealthCheckError{Target: TargetDocker, Reason: "test command must not be empty"}
	}
	if err := checkShellSyntax(h.Test); err != nil {
		return &InvalidHealthCheckError{Target: TargetDocker, Reason: err.Error()}
	}
	for _, d := range []Duration{h.Interval, h.Timeout} {
		if err := d.Validate(); err != nil {
			return &InvalidHealthCheckError{Target: TargetDocker, Reason: err.Error()}
		}
	}
	if h.Retries < 0 {
		return &InvalidHealthCheckError{Target: TargetDocker, Reason: fmt.Sprintf("retries must not be negative, got %d", h.Retries)}
	}
	return nil
}

// Validate returns nil if the AnsibleHealthCheck is valid.
func (h AnsibleHealthCheck) Validate() error {
	if strings.TrimSpace(h.Command) == "" {
		return &InvalidHealthCheckError{Target: TargetAnsible, Reason: "command must not be empty"}
	}
	if err := checkShellSyntax(h.Command); err != nil {
		return &InvalidHealthCheckError{Target: TargetAnsible, Reason: err.Error()}
	}
	return nil
}

// checkShellSyntax parses a command string as POSIX shell and reports syntax
// errors.
func checkShellSyntax(command string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(command), "healthcheck"); err != nil {
		return fmt.Errorf("command is not valid POSIX shell: %w", err)
	}
	return nil
}

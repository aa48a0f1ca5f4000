// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidEnvVarName is the sentinel error wrapped by InvalidEnvVarNameError.
	ErrInvalidEnvVarName = errors.New("invalid environment variable name")

	// envVarNameRegex validates environment variable names per POSIX
	// conventions.
	envVarNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type (
	// EnvVarName represents an environment variable name. A valid name starts
	// with a letter or underscore, followed by letters, digits, or
	// underscores.
	EnvVarName string

	// InvalidEnvVarNameError is returned when an EnvVarName is empty,
	// whitespace-only, or doesn't match the POSIX naming convention.
	InvalidEnvVarNameError struct {
		Value EnvVarName
	}

	// EnvVar declares one environment variable a module consumes. When two
	// modules in a plan declare the same name with differing defaults, the
	// later module in topological order wins and the merger records a
	// warning.
	EnvVar struct {
		// Name is the variable name.
		Name EnvVarName `json:"name"`
		// Description documents what the variable configures.
		Description string `json:"description,omitempty"`
		// Required marks variables that must be supplied by the caller at
		// deployment time.
		Required bool `json:"required,omitempty"`
		// Default is the value used when the caller supplies no override.
		Default string `json:"default,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidEnvVarNameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q (must match [A-Za-z_][A-Za-z0-9_]*)", e.Value)
}

// Unwrap returns ErrInvalidEnvVarName so callers can use errors.Is for
// programmatic detection.
func (e *InvalidEnvVarNameError) Unwrap() error { return ErrInvalidEnvVarName }

// Validate returns nil if the EnvVarName is a valid POSIX environment
// variable name, or a validation error if not.
func (n EnvVarName) Validate() error {
	s := string(n)
	if strings.TrimSpace(s) == "" || !envVarNameRegex.MatchString(s) {
		return &InvalidEnvVarNameError{Value: n}
	}
	return nil
}

// String returns the string representation of the EnvVarName.
func (n EnvVarName) String() string { return string(n) }

// Validate returns nil if the EnvVar is valid, or the first violation found.
func (v EnvVar) Validate() error {
	return v.Name.Validate()
}

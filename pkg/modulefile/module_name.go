// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidModuleName is the sentinel error wrapped by InvalidModuleNameError.
	ErrInvalidModuleName = errors.New("invalid module name")

	// moduleNameRegex validates module names. Names are lowercase identifiers
	// so they can double as Compose service names and Ansible role names.
	// [CUE-REDUNDANT] The module schema enforces the same pattern; this Go
	// validation also covers names arriving from CLI arguments and registry
	// keys, which don't go through the schema.
	moduleNameRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

type (
	// ModuleName identifies a module. A valid name is a non-empty lowercase
	// identifier restricted to [a-z0-9_-].
	ModuleName string

	// InvalidModuleNameError is returned when a ModuleName is empty or
	// contains characters outside the allowed set.
	InvalidModuleNameError struct {
		Value ModuleName
	}
)

// Error implements the error interface.
func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf("invalid module name %q (must match [a-z0-9_-]+)", e.Value)
}

// Unwrap returns ErrInvalidModuleName so callers can use errors.Is for
// programmatic detection.
func (e *InvalidModuleNameError) Unwrap() error { return ErrInvalidModuleName }

// Validate returns nil if the ModuleName is valid, or a validation error if not.
func (n ModuleName) Validate() error {
	if !moduleNameRegex.MatchString(string(n)) {
		return &InvalidModuleNameError{Value: n}
	}
	return nil
}

// String returns the string representation of the ModuleName.
func (n ModuleName) String() string { return string(n) }

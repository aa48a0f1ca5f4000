// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"

	"deckhand-cli/pkg/modulefile"
)

const (
	// StatusStable marks a module as production-ready.
	StatusStable Status = "stable"
	// StatusExperimental marks a module as usable but not yet hardened.
	StatusExperimental Status = "experimental"
	// StatusDeprecated marks a module as scheduled for removal; resolving it
	// still works but callers should surface a warning.
	StatusDeprecated Status = "deprecated"
)

// ErrInvalidStatus is the sentinel error wrapped by InvalidStatusError.
var ErrInvalidStatus = errors.New("invalid module status")

type (
	// Status is the lifecycle status of a registry entry.
	Status string

	// InvalidStatusError is returned when a Status value is not one of the
	// known lifecycle statuses.
	InvalidStatusError struct {
		Value Status
	}

	// Entry is one registry record: where a module's definition lives and
	// which exact version of it is authoritative.
	Entry struct {
		// Name is the module the entry describes. Populated from the registry
		// document's mapping key during parsing.
		Name modulefile.ModuleName `json:"-"`
		// Source is the repository location of the module's definition.
		Source string `json:"source"`
		// Version is the pinned three-component semantic version.
		Version modulefile.Version `json:"version"`
		// Deployment mirrors the module's declared target support so target
		// filtering can happen before any definition is loaded.
		Deployment modulefile.DeploymentTargets `json:"deployment"`
		// Status is the lifecycle status; empty defaults to stable.
		Status Status `json:"status,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid module status %q (valid: stable, experimental, deprecated)", e.Value)
}

// Unwrap returns ErrInvalidStatus so callers can use errors.Is for
// programmatic detection.
func (e *InvalidStatusError) Unwrap() error { return ErrInvalidStatus }

// Validate returns nil if the Status is known or empty (defaulted).
func (s Status) Validate() error {
	switch s {
	case "", StatusStable, StatusExperimental, StatusDeprecated:
		return nil
	default:
		return &InvalidStatusError{Value: s}
	}
}

// OrDefault returns the status, substituting stable when unset.
func (s Status) OrDefault() Status {
	if s == "" {
		return StatusStable
	}
	return s
}

// String returns the string representation of the Status.
func (s Status) String() string { return string(s) }

// Deprecated reports whether the entry is marked deprecated.
func (e *Entry) Deprecated() bool { return e.Status == StatusDeprecated }

// Validate returns nil if the Entry is structurally valid.
func (e *Entry) Validate() error {
	if err := e.Name.Validate(); err != nil {
		return err
	}
	if e.Source == "" {
		return fmt.Errorf("registry entry %q: source must not be empty", e.Name)
	}
	if err := e.Version.Validate(); err != nil {
		return fmt.Errorf("registry entry %q: %w", e.Name, err)
	}
	if !e.Deployment.Any() {
		return fmt.Errorf("registry entry %q: at least one deployment target must be enabled", e.Name)
	}
	return e.Status.Validate()
}

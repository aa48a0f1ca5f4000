// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrInvalidResourceSpec is the sentinel error wrapped by InvalidResourceSpecError.
	ErrInvalidResourceSpec = errors.New("invalid resource spec")

	// memoryRegex validates Compose memory strings like "512M", "2G", "256K".
	memoryRegex = regexp.MustCompile(`^[0-9]+[KMG]$`)
)

type (
	// ResourceSpec is one side of a resource-limit declaration: the CPU share
	// and memory amount either limited or reserved.
	ResourceSpec struct {
		// CPUs is a decimal CPU share, e.g. "0.5".
		CPUs string `json:"cpus,omitempty"`
		// Memory is a Compose memory string, e.g. "512M".
		Memory string `json:"memory,omitempty"`
	}

	// ResourceLimits carries a module's deploy-time resource declaration for
	// the docker target. Limits cap usage; Reservations are guaranteed.
	ResourceLimits struct {
		Limits       ResourceSpec `json:"limits,omitempty"`
		Reservations ResourceSpec `json:"reservations,omitempty"`
	}

	// InvalidResourceSpecError is returned when a ResourceSpec value does not
	// parse.
	InvalidResourceSpecError struct {
		Field  string
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidResourceSpecError) Error() string {
	return fmt.Sprintf("invalid resource spec %s=%q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidResourceSpec so callers can use errors.Is for
// programmatic detection.
func (e *InvalidResourceSpecError) Unwrap() error { return ErrInvalidResourceSpec }

// Validate returns nil if the ResourceSpec is valid, or the first violation
// found.
func (s ResourceSpec) Validate() error {
	if s.CPUs != "" {
		cpus, err := strconv.ParseFloat(s.CPUs, 64)
		if err != nil || cpus <= 0 {
			return &InvalidResourceSpecError{Field: "cpus", Value: s.CPUs, Reason: "must be a positive decimal like 0.5"}
		}
	}
	if s.Memory != "" && !memoryRegex.MatchString(s.Memory) {
		return &InvalidResourceSpecError{Field: "memory", Value: s.Memory, Reason: "must be a number followed by K, M, or G like 512M"}
	}
	return nil
}

// IsZero reports whether the spec declares nothing.
func (s ResourceSpec) IsZero() bool { return s.CPUs == "" && s.Memory == "" }

// Validate returns nil if the ResourceLimits are valid, or the first
// violation found.
func (l ResourceLimits) Validate() error {
	if err := l.Limits.Validate(); err != nil {
		return err
	}
	return l.Reservations.Validate()
}

// IsZero reports whether the limits declare nothing; the compose emitter
// substitutes its hardening defaults in that case.
func (l ResourceLimits) IsZero() bool {
	return l.Limits.IsZero() && l.Reservations.IsZero()
}

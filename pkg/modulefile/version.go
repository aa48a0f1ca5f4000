// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

type (
	// Version represents a module version string. A valid version is a
	// three-component semantic version (MAJOR.MINOR.PATCH); shorthand forms
	// like "1.2" are rejected so registry pins stay unambiguous.
	Version string

	// InvalidVersionError is returned when a Version value does not parse as
	// a three-component semantic version.
	InvalidVersionError struct {
		Value  Version
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is for
// programmatic detection.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Validate returns nil if the Version is a three-component semantic version,
// or a validation error if not.
func (v Version) Validate() error {
	if v == "" {
		return &InvalidVersionError{Value: v, Reason: "must not be empty"}
	}
	if _, err := semver.StrictNewVersion(string(v)); err != nil {
		return &InvalidVersionError{Value: v, Reason: "must be MAJOR.MINOR.PATCH"}
	}
	return nil
}

// Parsed returns the parsed semantic version. It must only be called on a
// validated Version.
func (v Version) Parsed() (*semver.Version, error) {
	parsed, err := semver.StrictNewVersion(string(v))
	if err != nil {
		return nil, &InvalidVersionError{Value: v, Reason: "must be MAJOR.MINOR.PATCH"}
	}
	return parsed, nil
}

// String returns the string representation of the Version.
func (v Version) String() string { return string(v) }

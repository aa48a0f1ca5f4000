// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"
)

// ErrInvalidPlatform is the sentinel error wrapped by InvalidPlatformError.
var ErrInvalidPlatform = errors.New("invalid platform")

type (
	// Platform is one row of a module's platform matrix, used only by the
	// ansible target: which OS family and versions the module supports, which
	// system packages it installs, and which service it manages.
	Platform struct {
		// OSFamily is the OS family identifier, e.g. "debian" or "redhat".
		OSFamily string `json:"os_family"`
		// OSVersions lists supported versions of the family.
		OSVersions []string `json:"os_versions,omitempty"`
		// Packages lists system packages installed on this platform.
		Packages []string `json:"packages,omitempty"`
		// Service is the system service name managed on this platform.
		Service string `json:"service,omitempty"`
	}

	// InvalidPlatformError is returned when a Platform row is structurally
	// invalid.
	InvalidPlatformError struct {
		Platform Platform
		Reason   string
	}
)

// Error implements the error interface.
func (e *InvalidPlatformError) Error() string {
	return fmt.Sprintf("invalid platform %q: %s", e.Platform.OSFamily, e.Reason)
}

// Unwrap returns ErrInvalidPlatform so callers can use errors.Is for
// programmatic detection.
func (e *InvalidPlatformError) Unwrap() error { return ErrInvalidPlatform }

// Validate returns nil if the Platform row is valid.
func (p Platform) Validate() error {
	if p.OSFamily == "" {
		return &InvalidPlatformError{Platform: p, Reason: "os_family must not be empty"}
	}
	return nil
}

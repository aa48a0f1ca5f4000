// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDuration is the sentinel error wrapped by InvalidDurationError.
var ErrInvalidDuration = errors.New("invalid duration")

type (
	// Duration represents a duration string in Go syntax (e.g., "30s",
	// "1m30s"), the same syntax Compose accepts for health-check timing.
	Duration string

	// InvalidDurationError is returned when a Duration value does not parse.
	InvalidDurationError struct {
		Value Duration
	}
)

// Error implements the error interface.
func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %q (expected Go duration syntax like \"30s\")", e.Value)
}

// Unwrap returns ErrInvalidDuration so callers can use errors.Is for
// programmatic detection.
func (e *InvalidDurationError) Unwrap() error { return ErrInvalidDuration }

// Validate returns nil if the Duration is empty (defaulted) or parses as a
// positive Go duration.
func (d Duration) Validate() error {
	if d == "" {
		return nil
	}
	parsed, err := time.ParseDuration(string(d))
	if err != nil || parsed <= 0 {
		return &InvalidDurationError{Value: d}
	}
	return nil
}

// String returns the string representation of the Duration.
func (d Duration) String() string { return string(d) }

// SPDX-License-Identifier: MPL-2.0

// Package emit holds what the artifact emitters share: the emission error
// type and the generated-file header. The emitters themselves live in the
// compose and ansible subpackages.
package emit

import (
	"errors"
	"fmt"
)

// Header is prepended to every generated artifact. It carries no timestamp
// so that identical inputs produce byte-identical output.
const Header = "# Generated by deckhand. Do not edit by hand.\n"

// ErrEmission is the sentinel error wrapped by EmissionError.
var ErrEmission = errors.New("artifact emission failed")

// EmissionError reports a broken internal invariant discovered while
// rendering an artifact. Reaching one means an earlier pipeline stage let
// invalid data through; the input documents are not at fault.
type EmissionError struct {
	// Artifact names the output being rendered, e.g. "docker-compose.yml".
	Artifact string
	// Reason describes the violated invariant.
	Reason string
}

// Error implements the error interface.
func (e *EmissionError) Error() string {
	return fmt.Sprintf("emitting %s: %s", e.Artifact, e.Reason)
}

// Unwrap returns ErrEmission so callers can use errors.Is for programmatic
// detection.
func (e *EmissionError) Unwrap() error { return ErrEmission }

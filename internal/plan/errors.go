// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"errors"
	"fmt"

	"deckhand-cli/pkg/modulefile"
)

var (
	// ErrUnresolvedDependency is the sentinel error wrapped by UnresolvedDependencyError.
	ErrUnresolvedDependency = errors.New("unresolved dependency")
	// ErrTargetUnsupported is the sentinel error wrapped by TargetUnsupportedError.
	ErrTargetUnsupported = errors.New("deployment target not supported")
	// ErrPortConflict is the sentinel error wrapped by PortConflictError.
	ErrPortConflict = errors.New("port conflict")
	// ErrVolumeConflict is the sentinel error wrapped by VolumeConflictError.
	ErrVolumeConflict = errors.New("volume target conflict")
)

type (
	// UnresolvedDependencyError is returned when a module's dependency is not
	// present in the registry. It names both the missing module and the module
	// that required it.
	UnresolvedDependencyError struct {
		// Missing is the dependency name absent from the registry.
		Missing modulefile.ModuleName
		// RequiredBy is the module whose dependencies list named Missing.
		RequiredBy modulefile.ModuleName
		// Suggestions lists the closest-matching registry names, if any.
		Suggestions []modulefile.ModuleName
	}

	// TargetUnsupportedError is returned when an explicitly requested module
	// does not support the requested deployment target.
	TargetUnsupportedError struct {
		Module modulefile.ModuleName
		Target modulefile.Target
	}

	// PortConflictError is returned when two modules in the same plan claim
	// the same (port, protocol) pair.
	PortConflictError struct {
		// Key is the claimed pair, e.g. "80/tcp".
		Key string
		// First is the module earlier in the plan that claimed the pair.
		First modulefile.ModuleName
		// Second is the module whose claim collided.
		Second modulefile.ModuleName
	}

	// VolumeConflictError is returned when two modules in the same plan mount
	// different sources at the same absolute container path.
	VolumeConflictError struct {
		// Target is the contested container path.
		Target string
		// First is the module earlier in the plan that claimed the path.
		First modulefile.ModuleName
		// Second is the module whose claim collided.
		Second modulefile.ModuleName
	}
)

// Error implements the error interface.
func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("module %q depends on %q, which is not in the registry", e.RequiredBy, e.Missing)
}

// Unwrap returns ErrUnresolvedDependency so callers can use errors.Is for
// programmatic detection.
func (e *UnresolvedDependencyError) Unwrap() error { return ErrUnresolvedDependency }

// Error implements the error interface.
func (e *TargetUnsupportedError) Error() string {
	return fmt.Sprintf("module %q does not support the %s deployment target", e.Module, e.Target)
}

// Unwrap returns ErrTargetUnsupported so callers can use errors.Is for
// programmatic detection.
func (e *TargetUnsupportedError) Unwrap() error { return ErrTargetUnsupported }

// Error implements the error interface.
func (e *PortConflictError) Error() string {
	return fmt.Sprintf("port %s claimed by both %q and %q", e.Key, e.First, e.Second)
}

// Unwrap returns ErrPortConflict so callers can use errors.Is for
// programmatic detection.
func (e *PortConflictError) Unwrap() error { return ErrPortConflict }

// Error implements the error interface.
func (e *VolumeConflictError) Error() string {
	return fmt.Sprintf("volume target %s claimed by both %q and %q", e.Target, e.First, e.Second)
}

// Unwrap returns ErrVolumeConflict so callers can use errors.Is for
// programmatic detection.
func (e *VolumeConflictError) Unwrap() error { return ErrVolumeConflict }

// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"
)

const (
	// TargetDocker renders modules into a Docker Compose document.
	TargetDocker Target = "docker"
	// TargetAnsible renders modules into an Ansible deployment artifact.
	TargetAnsible Target = "ansible"
	// TargetKubernetes is reserved for a future deployment path. Modules may
	// declare support for it, but no emitter exists yet.
	TargetKubernetes Target = "kubernetes"
)

// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
var ErrInvalidTarget = errors.New("invalid deployment target")

type (
	// Target identifies one of the output formats a module can be rendered for.
	Target string

	// InvalidTargetError is returned when a Target value is not one of the
	// known deployment targets.
	InvalidTargetError struct {
		Value Target
	}

	// DeploymentTargets declares which targets a module supports. At least
	// one target must be enabled for a module definition to be valid.
	DeploymentTargets struct {
		// Ansible enables the Ansible deployment path.
		Ansible bool `json:"ansible,omitempty"`
		// Docker enables the Docker Compose deployment path.
		Docker bool `json:"docker,omitempty"`
		// Kubernetes is reserved; it enables nothing today.
		Kubernetes bool `json:"kubernetes,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid deployment target %q (valid: docker, ansible)", e.Value)
}

// Unwrap returns ErrInvalidTarget so callers can use errors.Is for
// programmatic detection.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// Validate returns nil if the Target names an emittable deployment target.
// The reserved kubernetes target is rejected here because no emitter exists.
func (t Target) Validate() error {
	switch t {
	case TargetDocker, TargetAnsible:
		return nil
	default:
		return &InvalidTargetError{Value: t}
	}
}

// String returns the string representation of the Target.
func (t Target) String() string { return string(t) }

// Supports reports whether the given target is enabled.
func (d DeploymentTargets) Supports(t Target) bool {
	switch t {
	case TargetDocker:
		return d.Docker
	case TargetAnsible:
		return d.Ansible
	case TargetKubernetes:
		return d.Kubernetes
	default:
		return false
	}
}

// Any reports whether at least one deployment target is enabled.
func (d DeploymentTargets) Any() bool {
	return d.Ansible || d.Docker || d.Kubernetes
}

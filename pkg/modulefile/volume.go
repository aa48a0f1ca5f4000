// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// MountTypeVolume mounts a named Docker volume.
	MountTypeVolume MountType = "volume"
	// MountTypeBind mounts a host path.
	MountTypeBind MountType = "bind"
	// MountTypeTmpfs mounts an in-memory filesystem.
	MountTypeTmpfs MountType = "tmpfs"
)

var (
	// ErrInvalidVolumeMount is the sentinel error wrapped by InvalidVolumeMountError.
	ErrInvalidVolumeMount = errors.New("invalid volume mount")
	// ErrInvalidDirectorySpec is the sentinel error wrapped by InvalidDirectorySpecError.
	ErrInvalidDirectorySpec = errors.New("invalid directory spec")

	// fileModeRegex validates octal permission strings like "0755".
	fileModeRegex = regexp.MustCompile(`^0[0-7]{3}$`)
)

type (
	// MountType is the kind of a Docker volume mount.
	MountType string

	// VolumeMount declares one mount for the docker target. The Target path
	// is exclusive within a deployment plan: two modules mounting the same
	// absolute target is a hard merge conflict.
	VolumeMount struct {
		// Source is a named volume (volume type) or host path (bind type).
		Source string `json:"source"`
		// Target is the absolute path inside the container.
		Target string `json:"target"`
		// Type is volume, bind, or tmpfs; empty defaults to volume.
		Type MountType `json:"type,omitempty"`
	}

	// InvalidVolumeMountError is returned when a VolumeMount is structurally
	// invalid.
	InvalidVolumeMountError struct {
		Mount  VolumeMount
		Reason string
	}

	// DirectorySpec declares one directory the ansible target must create.
	DirectorySpec struct {
		// Path is the absolute directory path on the target host.
		Path string `json:"path"`
		// Owner is the owning user name.
		Owner string `json:"owner,omitempty"`
		// Group is the owning group name.
		Group string `json:"group,omitempty"`
		// Mode is the octal permission string, e.g. "0755".
		Mode string `json:"mode,omitempty"`
	}

	// InvalidDirectorySpecError is returned when a DirectorySpec is
	// structurally invalid.
	InvalidDirectorySpecError struct {
		Spec   DirectorySpec
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVolumeMountError) Error() string {
	return fmt.Sprintf("invalid volume mount %s:%s: %s", e.Mount.Source, e.Mount.Target, e.Reason)
}

// Unwrap returns ErrInvalidVolumeMount so callers can use errors.Is for
// programmatic detection.
func (e *InvalidVolumeMountError) Unwrap() error { return ErrInvalidVolumeMount }

// Error implements the error interface.
func (e *InvalidDirectorySpecError) Error() string {
	return fmt.Sprintf("invalid directory spec %q: %s", e.Spec.Path, e.Reason)
}

// Unwrap returns ErrInvalidDirectorySpec so callers can use errors.Is for
// programmatic detection.
func (e *InvalidDirectorySpecError) Unwrap() error { return ErrInvalidDirectorySpec }

// OrDefault returns the mount type, substituting volume when unset.
func (t MountType) OrDefault() MountType {
	if t == "" {
		return MountTypeVolume
	}
	return t
}

// String returns the string representation of the MountType.
func (t MountType) String() string { return string(t) }

// Validate returns nil if the VolumeMount is valid, or the first violation
// found.
func (m VolumeMount) Validate() error {
	if m.Source == "" {
		return &InvalidVolumeMountError{Mount: m, Reason: "source must not be empty"}
	}
	if !strings.HasPrefix(m.Target, "/") {
		return &InvalidVolumeMountError{Mount: m, Reason: "target must be an absolute path"}
	}
	switch m.Type {
	case "", MountTypeVolume, MountTypeBind, MountTypeTmpfs:
		return nil
	default:
		return &InvalidVolumeMountError{Mount: m, Reason: fmt.Sprintf("unknown type %q (valid: volume, bind, tmpfs)", m.Type)}
	}
}

// Validate returns nil if the DirectorySpec is valid, or the first violation
// found.
func (d DirectorySpec) Validate() error {
	if !strings.HasPrefix(d.Path, "/") {
		return &InvalidDirectorySpecError{Spec: d, Reason: "path must be absolute"}
	}
	if d.Mode != "" && !fileModeRegex.MatchString(d.Mode) {
		return &InvalidDirectorySpecError{Spec: d, Reason: fmt.Sprintf("mode %q must be a four-digit octal string like 0755", d.Mode)}
	}
	return nil
}

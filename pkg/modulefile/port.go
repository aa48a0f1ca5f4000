// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"errors"
	"fmt"
)

const (
	// ProtocolTCP is the default protocol for port declarations.
	ProtocolTCP Protocol = "tcp"
	// ProtocolUDP declares a UDP port.
	ProtocolUDP Protocol = "udp"
)

var (
	// ErrInvalidProtocol is the sentinel error wrapped by InvalidProtocolError.
	ErrInvalidProtocol = errors.New("invalid protocol")
	// ErrInvalidPort is the sentinel error wrapped by InvalidPortError.
	ErrInvalidPort = errors.New("invalid port")
)

type (
	// Protocol is the transport protocol of a port declaration.
	Protocol string

	// InvalidProtocolError is returned when a Protocol value is not tcp or udp.
	InvalidProtocolError struct {
		Value Protocol
	}

	// InvalidPortError is returned when a port number is outside 1-65535.
	InvalidPortError struct {
		Value int
	}

	// PortSpec declares one port a module exposes. Two modules in the same
	// deployment plan may never claim the same (port, protocol) pair; the
	// resource merger treats that as a hard conflict.
	PortSpec struct {
		// Port is the host port number (1-65535).
		Port int `json:"port"`
		// Protocol is tcp or udp; empty defaults to tcp.
		Protocol Protocol `json:"protocol,omitempty"`
		// Description documents what the port is for.
		Description string `json:"description,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidProtocolError) Error() string {
	return fmt.Sprintf("invalid protocol %q (valid: tcp, udp)", e.Value)
}

// Unwrap returns ErrInvalidProtocol so callers can use errors.Is for
// programmatic detection.
func (e *InvalidProtocolError) Unwrap() error { return ErrInvalidProtocol }

// Error implements the error interface.
func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("invalid port %d (must be 1-65535)", e.Value)
}

// Unwrap returns ErrInvalidPort so callers can use errors.Is for programmatic
// detection.
func (e *InvalidPortError) Unwrap() error { return ErrInvalidPort }

// Validate returns nil if the Protocol is tcp, udp, or empty (defaulted).
func (p Protocol) Validate() error {
	switch p {
	case "", ProtocolTCP, ProtocolUDP:
		return nil
	default:
		return &InvalidProtocolError{Value: p}
	}
}

// String returns the string representation of the Protocol.
func (p Protocol) String() string { return string(p) }

// OrDefault returns the protocol, substituting tcp when unset.
func (p Protocol) OrDefault() Protocol {
	if p == "" {
		return ProtocolTCP
	}
	return p
}

// Validate returns nil if the PortSpec is valid, or the first violation found.
func (s PortSpec) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return &InvalidPortError{Value: s.Port}
	}
	return s.Protocol.Validate()
}

// Key returns the canonical "port/protocol" identity used for conflict
// detection, e.g. "80/tcp".
func (s PortSpec) Key() string {
	return fmt.Sprintf("%d/%s", s.Port, s.Protocol.OrDefault())
}

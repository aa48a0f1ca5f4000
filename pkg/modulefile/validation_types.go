// SPDX-License-Identifier: MPL-2.0

package modulefile

import (
	"strconv"
	"strings"
)

const (
	// SeverityError indicates a validation failure that prevents generation.
	SeverityError ValidationSeverity = iota
	// SeverityWarning indicates a potential issue that doesn't prevent generation.
	SeverityWarning
)

type (
	// ValidationSeverity indicates the severity level of a validation issue.
	ValidationSeverity int

	// ValidationError represents a single validation issue found in a module
	// definition document. Field carries the path to the offending field
	// (e.g., "network[0].port") and Message names the rule violated, so
	// downstream tooling can present actionable diagnostics to the module
	// author rather than a generic "invalid module" message.
	ValidationError struct {
		// Field is the field path where the error occurred.
		Field string
		// Message is the human-readable description of the rule violated.
		Message string
		// Severity indicates whether this is an error or warning.
		Severity ValidationSeverity
	}

	// ValidationErrors is a collection of validation issues that implements
	// the error interface, allowing a single validation pass to report every
	// problem instead of stopping at the first.
	ValidationErrors []ValidationError
)

// String returns a human-readable representation of the severity level.
func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// IsError returns true if this is an error-level validation issue.
func (e ValidationError) IsError() bool { return e.Severity == SeverityError }

// IsWarning returns true if this is a warning-level validation issue.
func (e ValidationError) IsWarning() bool { return e.Severity == SeverityWarning }

// Error implements the error interface by joining all issue messages.
func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Error()
	}

	var b strings.Builder
	b.WriteString("validation failed with ")

	errorCount := errs.ErrorCount()
	warningCount := errs.WarningCount()
	if errorCount > 0 {
		b.WriteString(strconv.Itoa(errorCount))
		if errorCount == 1 {
			b.WriteString(" error")
		} else {
			b.WriteString(" errors")
		}
	}
	if warningCount > 0 {
		if errorCount > 0 {
			b.WriteString(" and ")
		}
		b.WriteString(strconv.Itoa(warningCount))
		if warningCount == 1 {
			b.WriteString(" warning")
		} else {
			b.WriteString(" warnings")
		}
	}
	b.WriteString(":")

	for _, err := range errs {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}

	return b.String()
}

// HasErrors returns true if there are any error-level validation issues.
func (errs ValidationErrors) HasErrors() bool {
	for _, e := range errs {
		if e.IsError() {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level issues.
func (errs ValidationErrors) ErrorCount() int {
	n := 0
	for _, e := range errs {
		if e.IsError() {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-level issues.
func (errs ValidationErrors) WarningCount() int {
	n := 0
	for _, e := range errs {
		if e.IsWarning() {
			n++
		}
	}
	return n
}

// SPDX-License-Identifier: MPL-2.0

// Package modulefile defines the schema, parsing, and validation for module
// definition documents (module.yml).
//
// A module definition describes one deployable service: its identity, the
// deployment targets it supports (Ansible, Docker, and a reserved Kubernetes
// slot), the other modules it requires, and its network, storage, environment,
// health-check, and resource-limit declarations.
//
// Parse is the only way to obtain a ModuleDefinition: the raw YAML document is
// unified with an embedded CUE schema and then structurally validated, so no
// downstream component ever re-interprets raw YAML. All validation errors are
// collected and reported together, each naming the field and rule violated.
package modulefile

// SPDX-License-Identifier: MPL-2.0

// Package registry defines the module registry: the authoritative mapping
// from module name to pinned version, source location, deployment-target
// support, and lifecycle status.
//
// A Registry is an immutable snapshot read once per generation run and passed
// explicitly through the pipeline. It is never re-read mid-run, so a release
// process mutating the registry document cannot change a partially-built
// dependency graph. Lookup failures carry closest-matching name suggestions
// so a typo in a requested module name is recoverable without listing the
// whole registry.
package registry

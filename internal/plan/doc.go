// SPDX-License-Identifier: MPL-2.0

// Package plan turns a set of requested module names into an ordered,
// conflict-free deployment plan. It loads the transitive dependency closure
// through the registry, orders it topologically, and merges the per-module
// resource claims into a single set.
//
// Everything in this package is constructed fresh per generation run and
// discarded on completion; nothing is shared across runs.
package plan

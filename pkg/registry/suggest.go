// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"sort"

	"deckhand-cli/pkg/modulefile"
)

const (
	// maxSuggestionDistance is the largest edit distance still considered a
	// plausible typo.
	maxSuggestionDistance = 2
	// maxSuggestions caps how many candidates a NotFoundError carries.
	maxSuggestions = 3
)

// closestNames returns up to maxSuggestions known names within
// maxSuggestionDistance edits of the requested name, closest first; ties
// break lexicographically so suggestions are stable across runs.
func closestNames(name modulefile.ModuleName, known []modulefile.ModuleName) []modulefile.ModuleName {
	type candidate struct {
		name     modulefile.ModuleName
		distance int
	}

	var candidates []candidate
	for _, k := range known {
		if d := editDistance(string(name), string(k)); d <= maxSuggestionDistance {
			candidates = append(candidates, candidate{name: k, distance: d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]modulefile.ModuleName, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

// editDistance computes the Levenshtein distance between two strings using
// the two-row dynamic programming formulation.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

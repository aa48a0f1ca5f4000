// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for topological
// sorting and cycle detection. It is used by the deployment planner to order
// modules so every dependency appears before its dependents.
package dag

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing
	// topological ordering.
	CycleError struct {
		// Cycle is the full closed walk forming the cycle, first node repeated
		// at the end, e.g. [a b c a].
		Cycle []string
	}

	// Graph is a directed graph for topological sorting.
	// Nodes are identified by string keys. Edges represent "must come before"
	// relationships: an edge from A to B means A precedes B in the plan.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[string][]string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}

	// nameHeap is a min-heap of node names used to pick the lexicographically
	// smallest ready node at each step.
	nameHeap []string
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (h nameHeap) Len() int           { return len(h) }
func (h nameHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h nameHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nameHeap) Push(x any)        { *h = append(*h, x.(string)) }
func (h *nameHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	g.nodeSet[name] = true
}

// AddEdge adds a directed edge from -> to, meaning "from" must precede "to".
// Both nodes are implicitly added if they don't exist.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodeSet) }

// sortedNodes returns every node name in lexicographic order.
func (g *Graph) sortedNodes() []string {
	nodes := make([]string, 0, len(g.nodeSet))
	for node := range g.nodeSet {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

// TopologicalSort returns a valid ordering using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// The returned order is deterministic and independent of insertion order:
// whenever several nodes are ready at once, the lexicographically smallest
// name goes first.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodeSet) == 0 {
		return nil, nil
	}

	nodes := g.sortedNodes()

	// Compute in-degrees.
	inDegree := make(map[string]int, len(nodes))
	for _, node := range nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	// Seed the ready heap with nodes that have no incoming edges.
	ready := &nameHeap{}
	for _, node := range nodes {
		if inDegree[node] == 0 {
			heap.Push(ready, node)
		}
	}

	result := make([]string, 0, len(nodes))
	for ready.Len() > 0 {
		node := heap.Pop(ready).(string)
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				heap.Push(ready, neighbor)
			}
		}
	}

	if len(result) != len(nodes) {
		return nil, &CycleError{Cycle: g.findCycle(inDegree)}
	}

	return result, nil
}

// findCycle recovers a concrete cycle from the nodes left with a positive
// in-degree after Kahn's algorithm stalls. Nodes that merely sit downstream
// of a cycle are trimmed away first, so every survivor has an outgoing edge
// within the set and a walk along those edges must revisit a node; the walk
// from the first revisit back to itself is the reported cycle. Starting from
// the lexicographically smallest survivor keeps the report deterministic.
func (g *Graph) findCycle(inDegree map[string]int) []string {
	remaining := make(map[string]bool)
	for node, deg := range inDegree {
		if deg > 0 {
			remaining[node] = true
		}
	}

	// Repeatedly drop nodes with no outgoing edge into the set; what is left
	// is exactly the union of cycles and paths between them.
	for {
		trimmed := false
		for node := range remaining {
			hasOut := false
			for _, neighbor := range g.adjacency[node] {
				if remaining[neighbor] {
					hasOut = true
					break
				}
			}
			if !hasOut {
				delete(remaining, node)
				trimmed = true
			}
		}
		if !trimmed {
			break
		}
	}

	var start string
	for _, node := range g.sortedNodes() {
		if remaining[node] {
			start = node
			break
		}
	}

	visited := make(map[string]int) // node -> position in walk
	var walk []string
	node := start
	for {
		if pos, seen := visited[node]; seen {
			cycle := append([]string{}, walk[pos:]...)
			return append(cycle, node)
		}
		visited[node] = len(walk)
		walk = append(walk, node)

		next := ""
		for _, neighbor := range g.adjacency[node] {
			if remaining[neighbor] && (next == "" || neighbor < next) {
				next = neighbor
			}
		}
		node = next
	}
}

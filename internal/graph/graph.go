// Package graph builds and queries the directed dependency graph over SQL
// artifacts. Unlike a strict DAG, the graph tolerates cycles: real SQL
// codebases grow accidental cycles through staging tables, so every
// traversal is guarded by a visited set instead of assuming a topological
// order exists.
package graph

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqlgraph/internal/artifact"
)

// Mode selects the direction of a subgraph query.
type Mode string

const (
	// ModeDependency selects everything the root depends on (ancestors).
	ModeDependency Mode = "dependency"
	// ModeParent selects everything that depends on the root (descendants).
	ModeParent Mode = "parent"
)

// ParseMode validates a relationship string from the CLI.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDependency, ModeParent:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid relationship %q: must be %q or %q", s, ModeDependency, ModeParent)
}

// Edge is a directed dependency relation: From's definition references To.
type Edge struct {
	From string
	To   string
}

// ConflictError reports two distinct files resolving to the same artifact name.
type ConflictError struct {
	Name       string
	FirstPath  string
	SecondPath string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("artifact %q is defined by two files: %s and %s", e.Name, e.FirstPath, e.SecondPath)
}

// UnknownArtifactError reports a subgraph root that is not in the graph.
type UnknownArtifactError struct {
	Name string
}

func (e *UnknownArtifactError) Error() string {
	return fmt.Sprintf("unknown artifact %q: not present in the dependency graph", e.Name)
}

// Entry is one resolved file: the artifact it defines plus its dependencies.
type Entry struct {
	Artifact artifact.Artifact
	Deps     []string
}

// Graph is an immutable directed dependency graph. Node and edge iteration
// follows insertion order so that repeated builds over the same file set
// render identically.
type Graph struct {
	nodes      map[string]artifact.Artifact
	order      []string
	deps       map[string][]string // dependent -> dependencies (outgoing)
	dependents map[string][]string // dependency -> dependents (incoming)
	edges      []Edge
	edgeSet    map[Edge]struct{}
}

func newGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]artifact.Artifact),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
		edgeSet:    make(map[Edge]struct{}),
	}
}

// Build assembles a graph from resolved entries in file-scan order.
// Artifacts referenced but never defined by a file become referenced-only
// nodes with an empty SourcePath. Name collisions between distinct files
// are collected across the whole pass and returned joined, so a user sees
// every offending file in one run.
func Build(entries []Entry) (*Graph, error) {
	g := newGraph()
	var errs []error

	for _, entry := range entries {
		a := entry.Artifact
		if existing, ok := g.nodes[a.Name]; ok && existing.Defined() {
			errs = append(errs, &ConflictError{
				Name:       a.Name,
				FirstPath:  existing.SourcePath,
				SecondPath: a.SourcePath,
			})
			continue
		}
		g.addNode(a)

		for _, dep := range entry.Deps {
			if dep == a.Name {
				continue
			}
			if _, ok := g.nodes[dep]; !ok {
				g.addNode(artifact.Artifact{Name: dep})
			}
			g.addEdge(a.Name, dep)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g, nil
}

// addNode inserts or upgrades a node. A referenced-only placeholder is
// replaced in place when the defining file shows up later in the scan,
// keeping its original insertion position.
func (g *Graph) addNode(a artifact.Artifact) {
	if existing, ok := g.nodes[a.Name]; ok {
		if !existing.Defined() && a.Defined() {
			g.nodes[a.Name] = a
		}
		return
	}
	g.nodes[a.Name] = a
	g.order = append(g.order, a.Name)
}

// addEdge records a deduplicated directed edge from dependent to dependency.
func (g *Graph) addEdge(from, to string) {
	e := Edge{From: from, To: to}
	if _, ok := g.edgeSet[e]; ok {
		return
	}
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.deps[from] = append(g.deps[from], to)
	g.dependents[to] = append(g.dependents[to], from)
}

// Lookup returns the artifact for a name.
func (g *Graph) Lookup(name string) (artifact.Artifact, bool) {
	a, ok := g.nodes[name]
	return a, ok
}

// HasNode reports whether the named artifact is in the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Artifacts returns all nodes in insertion order.
func (g *Graph) Artifacts() []artifact.Artifact {
	out := make([]artifact.Artifact, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Dependencies returns the direct dependencies of a node (outgoing edges).
func (g *Graph) Dependencies(name string) []string {
	out := make([]string, len(g.deps[name]))
	copy(out, g.deps[name])
	return out
}

// Dependents returns the direct dependents of a node (incoming edges).
func (g *Graph) Dependents(name string) []string {
	out := make([]string, len(g.dependents[name]))
	copy(out, g.dependents[name])
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Roots returns nodes with no dependents, in insertion order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, name := range g.order {
		if len(g.dependents[name]) == 0 {
			roots = append(roots, name)
		}
	}
	return roots
}

// Leaves returns nodes with no dependencies, in insertion order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, name := range g.order {
		if len(g.deps[name]) == 0 {
			leaves = append(leaves, name)
		}
	}
	return leaves
}

// Select computes the reachable induced subgraph rooted at root. In
// ModeDependency it follows edges outward (the root's transitive
// dependencies); in ModeParent it follows edges inward (the root's
// transitive dependents). An empty root returns the graph unchanged
// regardless of mode. Traversal is breadth-first with a visited set, so
// cycles and self-references terminate.
func (g *Graph) Select(root string, mode Mode) (*Graph, error) {
	if root == "" {
		return g, nil
	}
	if !g.HasNode(root) {
		return nil, &UnknownArtifactError{Name: root}
	}

	next := g.Dependencies
	if mode == ModeParent {
		next = g.Dependents
	}

	selected := map[string]struct{}{root: {}}
	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range next(current) {
			if _, ok := selected[neighbor]; ok {
				continue
			}
			selected[neighbor] = struct{}{}
			queue = append(queue, neighbor)
		}
	}

	sub := newGraph()
	for _, name := range g.order {
		if _, ok := selected[name]; ok {
			sub.addNode(g.nodes[name])
		}
	}
	for _, e := range g.edges {
		if _, ok := selected[e.From]; !ok {
			continue
		}
		if _, ok := selected[e.To]; !ok {
			continue
		}
		sub.addEdge(e.From, e.To)
	}
	return sub, nil
}

// HasCycle reports whether the graph contains a dependency cycle, along
// with one offending path. Cycles are not an error for building or
// rendering, but the check command surfaces them as diagnostics.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		recStack[name] = true

		for _, dep := range g.deps[name] {
			if !visited[dep] {
				path[dep] = name
				if dfs(dep) {
					return true
				}
			} else if recStack[dep] {
				cyclePath = []string{dep}
				for curr := name; curr != dep; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{dep}, cyclePath...)
				return true
			}
		}

		recStack[name] = false
		return false
	}

	for _, name := range g.order {
		if !visited[name] {
			if dfs(name) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

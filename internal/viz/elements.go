// Package viz renders a dependency graph as an interactive Cytoscape.js
// document served over HTTP, with optional live reload on .sql changes.
package viz

import (
	"github.com/leapstack-labs/sqlgraph/internal/graph"
	"github.com/leapstack-labs/sqlgraph/internal/style"
)

// NodeData is the Cytoscape data record for an artifact node.
type NodeData struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	ArtifactType string `json:"artifact_type"`
	IsTable      bool   `json:"is_table"`
}

// EdgeData is the Cytoscape data record for a dependency edge.
type EdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Element wraps node or edge data in the shape Cytoscape expects.
type Element struct {
	Data any `json:"data"`
}

// Elements converts a graph into Cytoscape elements. Node artifact types
// come from the style resolver; the root artifact (if any) is always typed
// "root" so its style overrides every rule.
func Elements(g *graph.Graph, resolver *style.Resolver, rootArtifact string) []Element {
	elements := make([]Element, 0, g.NodeCount()+g.EdgeCount())
	for _, a := range g.Artifacts() {
		artifactType := resolver.Resolve(a.Name).Name
		if a.Name == rootArtifact {
			artifactType = style.Root.Name
		}
		elements = append(elements, Element{Data: NodeData{
			ID:           a.Name,
			Label:        a.Name,
			ArtifactType: artifactType,
			IsTable:      a.IsTable,
		}})
	}
	for _, e := range g.Edges() {
		elements = append(elements, Element{Data: EdgeData{
			Source: e.From,
			Target: e.To,
		}})
	}
	return elements
}

// StyleEntry is one Cytoscape stylesheet record.
type StyleEntry struct {
	Selector string         `json:"selector"`
	Style    map[string]any `json:"style"`
}

// edge arrow colors per relationship direction
const (
	dependencyEdgeColor = "#C5D3E2"
	parentEdgeColor     = "#FFA500"
)

// Stylesheet builds the Cytoscape stylesheet: base node and edge styles,
// one selector per configured rule, and the fixed root style last so it
// always wins.
func Stylesheet(rules []style.Rule, mode graph.Mode) []StyleEntry {
	edgeColor := dependencyEdgeColor
	if mode == graph.ModeParent {
		edgeColor = parentEdgeColor
	}

	entries := []StyleEntry{
		{
			Selector: "node",
			Style: map[string]any{
				"shape":            style.Default.Shape,
				"background-color": style.Default.Color,
				"border-color":     "black",
				"border-width":     1,
				"label":            "data(label)",
				"text-valign":      "center",
				"text-halign":      "left",
				"text-wrap":        "wrap",
				"font-size":        "20px",
			},
		},
		{
			Selector: "edge",
			Style: map[string]any{
				"target-arrow-color": edgeColor,
				"target-arrow-shape": "triangle",
				"line-color":         dependencyEdgeColor,
				"arrow-scale":        2,
				"curve-style":        "bezier",
			},
		},
	}

	for _, rule := range rules {
		entries = append(entries, StyleEntry{
			Selector: `[artifact_type = "` + rule.Name + `"]`,
			Style: map[string]any{
				"background-color": rule.Color,
				"shape":            rule.Shape,
			},
		})
	}

	entries = append(entries, StyleEntry{
		Selector: `[artifact_type = "` + style.Root.Name + `"]`,
		Style: map[string]any{
			"background-color": style.Root.Color,
			"shape":            style.Root.Shape,
		},
	})
	return entries
}

// LayoutName resolves the "default" graph type to a sensible Cytoscape
// layout: breadthfirst when a root artifact focuses the view, concentric
// for the full graph.
func LayoutName(graphType, rootArtifact string) string {
	if graphType != "" && graphType != "default" {
		return graphType
	}
	if rootArtifact != "" {
		return "breadthfirst"
	}
	return "concentric"
}

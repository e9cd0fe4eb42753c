package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgraph/internal/graph"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Format string // json or dot
	Out    string // output file, empty for stdout
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dependency graph as JSON or Graphviz DOT",
		Long: `Write the dependency graph (or the subgraph selected by
--root-artifact and --relationship) to stdout or a file.

Formats:
  json  node/edge catalog with source paths and dependencies
  dot   Graphviz digraph, pipe into "dot -Tsvg" to render`,
		Example: `  # Full graph as JSON
  sqlgraph export --format json

  # Subgraph as DOT, rendered with Graphviz
  sqlgraph export --root-artifact marts.revenue --format dot | dot -Tsvg -o graph.svg

  # Write to a file
  sqlgraph export --format json --out graph.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "json", "Export format: json, dot")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file (default: stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	rt, err := RuntimeFrom(cmd)
	if err != nil {
		return err
	}
	cfg := rt.Config

	mode, err := graph.ParseMode(cfg.Relationship)
	if err != nil {
		return err
	}

	eng := rt.newEngine()
	if _, err := eng.Discover(); err != nil {
		return err
	}
	g, err := eng.Graph().Select(cfg.RootArtifact, mode)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.Out, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch opts.Format {
	case "json":
		return writeJSON(w, g)
	case "dot":
		return writeDOT(w, g)
	default:
		return fmt.Errorf("unknown export format %q: must be json or dot", opts.Format)
	}
}

// Catalog is the JSON export shape.
type Catalog struct {
	Nodes []CatalogNode `json:"nodes"`
	Edges []CatalogEdge `json:"edges"`
}

// CatalogNode is one artifact in the JSON export.
type CatalogNode struct {
	Name         string   `json:"name"`
	IsTable      bool     `json:"is_table"`
	SourcePath   string   `json:"source_path,omitempty"`
	Dependencies []string `json:"dependencies"`
}

// CatalogEdge is one dependency edge in the JSON export.
type CatalogEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func newCatalog(g *graph.Graph) Catalog {
	c := Catalog{
		Nodes: make([]CatalogNode, 0, g.NodeCount()),
		Edges: make([]CatalogEdge, 0, g.EdgeCount()),
	}
	for _, a := range g.Artifacts() {
		c.Nodes = append(c.Nodes, CatalogNode{
			Name:         a.Name,
			IsTable:      a.IsTable,
			SourcePath:   a.SourcePath,
			Dependencies: g.Dependencies(a.Name),
		})
	}
	for _, e := range g.Edges() {
		c.Edges = append(c.Edges, CatalogEdge{Source: e.From, Target: e.To})
	}
	return c
}

func writeJSON(w io.Writer, g *graph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newCatalog(g))
}

// writeDOT emits a Graphviz digraph. Tables render as boxes, views as
// ellipses, referenced-only artifacts as dashed boxes.
func writeDOT(w io.Writer, g *graph.Graph) error {
	var b strings.Builder
	b.WriteString("digraph sqlgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, a := range g.Artifacts() {
		attrs := "shape=ellipse"
		switch {
		case !a.Defined():
			attrs = "shape=box, style=dashed"
		case a.IsTable:
			attrs = "shape=box"
		}
		fmt.Fprintf(&b, "  %q [%s];\n", a.Name, attrs)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %q -> %q;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

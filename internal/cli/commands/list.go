package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgraph/internal/cli/output"
	"github.com/leapstack-labs/sqlgraph/internal/graph"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all artifacts and their dependencies",
		Long: `List every artifact discovered under the SQL directory with its kind,
direct dependencies, and dependents. Artifacts that are referenced but
have no backing file are marked as external.

With --root-artifact only the selected subgraph is listed.

Output adapts to environment:
  - Terminal: table output
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # List all artifacts
  sqlgraph list

  # List as JSON
  sqlgraph list --output json

  # List only what marts.revenue depends on
  sqlgraph list --root-artifact marts.revenue`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
	return cmd
}

func runList(cmd *cobra.Command) error {
	rt, err := RuntimeFrom(cmd)
	if err != nil {
		return err
	}
	cfg := rt.Config
	r := rt.Renderer

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

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(g, r)
	case output.ModeMarkdown:
		return listMarkdown(g, r)
	default:
		return listText(g, r)
	}
}

// artifactKind labels an artifact for display.
func artifactKind(isTable, defined bool) string {
	switch {
	case !defined:
		return "external"
	case isTable:
		return "table"
	default:
		return "view"
	}
}

// listText renders a table of artifacts.
func listText(g *graph.Graph, r *output.Renderer) error {
	r.Header(1, fmt.Sprintf("Artifacts (%d total, %d edges)", g.NodeCount(), g.EdgeCount()))

	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Artifact", "Kind", "Dependencies", "Dependents", "Source"})
	for _, a := range g.Artifacts() {
		t.AppendRow(table.Row{
			a.Name,
			artifactKind(a.IsTable, a.Defined()),
			len(g.Dependencies(a.Name)),
			len(g.Dependents(a.Name)),
			a.SourcePath,
		})
	}
	t.Render()
	return nil
}

// listMarkdown renders a markdown listing.
func listMarkdown(g *graph.Graph, r *output.Renderer) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Artifacts (%d total, %d edges)", g.NodeCount(), g.EdgeCount())))
	r.Println("")
	for _, a := range g.Artifacts() {
		kind := artifactKind(a.IsTable, a.Defined())
		deps := g.Dependencies(a.Name)
		if len(deps) == 0 {
			r.Printf("- **%s** (%s)\n", a.Name, kind)
			continue
		}
		r.Printf("- **%s** (%s) depends on: %s\n", a.Name, kind, strings.Join(deps, ", "))
	}
	return nil
}

// listJSON renders the graph catalog as JSON.
func listJSON(g *graph.Graph, r *output.Renderer) error {
	return r.JSON(newCatalog(g))
}

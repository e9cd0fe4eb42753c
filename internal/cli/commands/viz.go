package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgraph/internal/graph"
	"github.com/leapstack-labs/sqlgraph/internal/viz"
)

// NewVizCommand creates the viz command.
func NewVizCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Serve the dependency graph in your browser",
		Long: `Scan the SQL directory, build the dependency graph, and serve it as an
interactive Cytoscape document.

With --root-artifact the view is reduced to a subgraph: relationship
"dependency" shows everything the root depends on, "parent" shows
everything that depends on the root. Without a root the full graph is
shown regardless of relationship.

With --watch (the default) the page reloads automatically when .sql
files change.`,
		Example: `  # Visualize the full graph
  sqlgraph viz --sql-dir warehouse/sql

  # Show everything marts.revenue depends on
  sqlgraph viz --root-artifact marts.revenue

  # Show everything that depends on raw_orders
  sqlgraph viz --root-artifact raw_orders --relationship parent

  # Pick an explicit layout
  sqlgraph viz --graph-type breadthfirst`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runViz(cmd)
		},
	}
	return cmd
}

func runViz(cmd *cobra.Command) error {
	rt, err := RuntimeFrom(cmd)
	if err != nil {
		return err
	}
	cfg := rt.Config

	mode, err := graph.ParseMode(cfg.Relationship)
	if err != nil {
		return err
	}
	rules, err := cfg.StyleRules()
	if err != nil {
		return err
	}

	eng := rt.newEngine()
	result, err := eng.Discover()
	if err != nil {
		return err
	}
	rt.Renderer.Dim(result.Summary())

	// Fail on an unknown root before binding the port.
	if _, err := eng.Graph().Select(cfg.RootArtifact, mode); err != nil {
		return err
	}

	srv, err := viz.NewServer(viz.Config{
		Engine:       eng,
		Rules:        rules,
		RootArtifact: cfg.RootArtifact,
		Mode:         mode,
		GraphType:    cfg.GraphType,
		Port:         cfg.Port,
		Watch:        cfg.Watch,
		Logger:       rt.Logger,
	})
	if err != nil {
		return err
	}

	rt.Renderer.Success(fmt.Sprintf("Serving graph at http://localhost:%d (Ctrl+C to stop)", cfg.Port))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Serve(ctx)
}

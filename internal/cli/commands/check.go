package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgraph/internal/artifact"
	"github.com/leapstack-labs/sqlgraph/internal/graph"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate naming conventions across the SQL directory",
		Long: `Scan the SQL directory and report every naming-convention violation and
artifact name conflict in one pass. Dependency cycles are reported as
warnings: the graph still renders, but a cycle usually means a modeling
mistake.

Exits non-zero if any violation is found.`,
		Example: `  # Validate the current directory
  sqlgraph check

  # Validate a specific tree
  sqlgraph check --sql-dir warehouse/sql`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}
	return cmd
}

func runCheck(cmd *cobra.Command) error {
	rt, err := RuntimeFrom(cmd)
	if err != nil {
		return err
	}
	r := rt.Renderer

	eng := rt.newEngine()
	result, err := eng.Discover()
	if err != nil {
		var convErr *artifact.ConventionError
		var confErr *graph.ConflictError
		if !errors.As(err, &convErr) && !errors.As(err, &confErr) {
			// I/O or configuration failure, not a naming problem.
			return err
		}
		violations := strings.Split(err.Error(), "\n")
		r.Error(fmt.Sprintf("Found %d problem(s):", len(violations)))
		for _, v := range violations {
			r.Error("  " + v)
		}
		return fmt.Errorf("%d naming problem(s) found", len(violations))
	}

	if has, path := eng.Graph().HasCycle(); has {
		r.Error("Warning: dependency cycle: " + strings.Join(path, " -> "))
	}

	r.Success("All files follow the naming convention.")
	r.Dim(result.Summary())
	return nil
}

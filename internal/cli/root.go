// Package cli provides the command-line interface for sqlgraph.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgraph/internal/cli/commands"
	"github.com/leapstack-labs/sqlgraph/internal/cli/config"
	"github.com/leapstack-labs/sqlgraph/internal/cli/output"
)

// Version information (set at build time).
var (
	Version = "0.1.0"
)

var cfgFile string

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlgraph",
		Short: "sqlgraph - SQL dependency graph visualizer",
		Long: `sqlgraph discovers producer/consumer relationships among SQL table and
view definitions and renders them as an interactive dependency graph.

Each .sql file under the SQL directory defines one artifact; the file's
path maps 1:1 to the artifact's fully-qualified name (path/to/name.sql
defines "path.to.name", with an optional ".table" marker before the
extension). Quoted references inside the SQL become dependency edges.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if !cfg.Verbose {
				level = slog.LevelWarn
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}

			cmd.SetContext(commands.WithRuntime(cmd.Context(), &commands.Runtime{
				Config:   cfg,
				Renderer: renderer,
				Logger:   logger,
			}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sqlgraph.yaml)")
	rootCmd.PersistentFlags().String("sql-dir", "", "Path to the SQL directory")
	rootCmd.PersistentFlags().String("relationship", "", "Subgraph direction: dependency or parent")
	rootCmd.PersistentFlags().String("root-artifact", "", "Root artifact for the subgraph (fully-qualified name)")
	rootCmd.PersistentFlags().String("graph-type", "", "Cytoscape layout name (default: breadthfirst with a root, concentric without)")
	rootCmd.PersistentFlags().String("styles", "", "Path to a style config file")
	rootCmd.PersistentFlags().Int("port", 0, "Viz server port")
	rootCmd.PersistentFlags().Bool("watch", true, "Reload the browser when .sql files change")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("relationship", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"dependency", "parent"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVizCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// Main is the CLI entry point: it runs the root command and prints any
// failure to stderr.
func Main() int {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

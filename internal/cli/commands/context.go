// Package commands implements the sqlgraph subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlgraph/internal/cli/config"
	"github.com/leapstack-labs/sqlgraph/internal/cli/output"
	"github.com/leapstack-labs/sqlgraph/internal/engine"
)

// runtimeKey stores the Runtime in the command context.
type runtimeKey struct{}

// Runtime carries the per-invocation state assembled by the root command.
type Runtime struct {
	Config   *config.Config
	Renderer *output.Renderer
	Logger   *slog.Logger
}

// WithRuntime stores the runtime in a context.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// RuntimeFrom retrieves the runtime placed in the command context by the
// root command's PersistentPreRunE.
func RuntimeFrom(cmd *cobra.Command) (*Runtime, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("command runtime is not initialized")
	}
	rt, ok := ctx.Value(runtimeKey{}).(*Runtime)
	if !ok || rt == nil {
		return nil, fmt.Errorf("command runtime is not initialized")
	}
	return rt, nil
}

// newEngine creates an engine bound to the configured SQL directory.
func (rt *Runtime) newEngine() *engine.Engine {
	return engine.New(engine.Config{
		SQLDir: rt.Config.SQLDir,
		Logger: rt.Logger,
	})
}

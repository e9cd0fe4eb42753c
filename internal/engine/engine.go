// Package engine orchestrates the scan of a SQL directory into a dependency
// graph: enumerate .sql files, extract references, resolve artifact names,
// and build the graph. Each run re-derives the graph from scratch from the
// current file set.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/leapstack-labs/sqlgraph/internal/graph"
)

// Engine scans a SQL directory and holds the resulting graph.
type Engine struct {
	sqlDir string
	logger *slog.Logger
	graph  *graph.Graph
}

// Config holds engine configuration.
type Config struct {
	// SQLDir is the root directory of .sql artifact definitions.
	SQLDir string
	// Logger is the structured logger; defaults to a stderr text handler.
	Logger *slog.Logger
}

// New creates an engine for the given SQL directory.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Engine{
		sqlDir: cfg.SQLDir,
		logger: logger,
	}
}

// SQLDir returns the root directory the engine scans.
func (e *Engine) SQLDir() string {
	return e.sqlDir
}

// Graph returns the graph built by the last Discover call.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// DiscoveryResult contains statistics about a discovery run.
type DiscoveryResult struct {
	// FilesTotal is the number of .sql files scanned.
	FilesTotal int
	// ArtifactsDefined is the number of artifacts with a backing file.
	ArtifactsDefined int
	// ArtifactsReferenced is the number of referenced-only artifacts.
	ArtifactsReferenced int
	// Edges is the number of dependency edges.
	Edges int

	Duration time.Duration
}

// Summary returns a human-readable one-line summary.
func (r *DiscoveryResult) Summary() string {
	return fmt.Sprintf(
		"Artifacts: %d defined, %d referenced-only | Edges: %d | Files: %d | Duration: %s",
		r.ArtifactsDefined, r.ArtifactsReferenced, r.Edges, r.FilesTotal,
		r.Duration.Round(time.Millisecond),
	)
}

// Discover scans the SQL directory and builds the dependency graph.
// Naming-convention and conflict errors are collected across the whole pass
// and returned joined, so one run reports every offending file. The build is
// all-or-nothing: no graph is kept when any file is invalid.
func (e *Engine) Discover() (*DiscoveryResult, error) {
	start := time.Now()
	result := &DiscoveryResult{}

	e.logger.Info("starting discovery", "sql_dir", e.sqlDir)

	entries, errs, err := e.scan()
	if err != nil {
		return result, err
	}
	result.FilesTotal = len(entries) + len(errs)

	g, buildErr := graph.Build(entries)
	if buildErr != nil {
		errs = append(errs, buildErr)
	}
	if len(errs) > 0 {
		return result, joinErrors(errs)
	}

	e.graph = g
	for _, a := range g.Artifacts() {
		if a.Defined() {
			result.ArtifactsDefined++
		} else {
			result.ArtifactsReferenced++
		}
	}
	result.Edges = g.EdgeCount()
	result.Duration = time.Since(start)

	e.logger.Info("discovery completed",
		"files", result.FilesTotal,
		"artifacts_defined", result.ArtifactsDefined,
		"artifacts_referenced", result.ArtifactsReferenced,
		"edges", result.Edges,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

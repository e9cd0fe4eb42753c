package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/sqlgraph/internal/artifact"
	"github.com/leapstack-labs/sqlgraph/internal/graph"
	"github.com/leapstack-labs/sqlgraph/internal/sqlref"
)

// scan walks the SQL directory in lexical order, extracting references and
// resolving artifact names file by file. Convention errors are collected,
// not fatal per file; I/O failures abort the scan.
func (e *Engine) scan() ([]graph.Entry, []error, error) {
	info, err := os.Stat(e.sqlDir)
	if err != nil {
		return nil, nil, fmt.Errorf("sql directory %s: %w", e.sqlDir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("sql directory %s is not a directory", e.sqlDir)
	}

	var entries []graph.Entry
	var errs []error

	walkErr := filepath.WalkDir(e.sqlDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories (.git, editor state, etc.)
			if path != e.sqlDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".sql") {
			return nil
		}

		content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from filepath.WalkDir
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		refs := sqlref.ExtractReferences(string(content))
		a, deps, err := artifact.Resolve(path, e.sqlDir, refs)
		if err != nil {
			e.logger.Debug("naming convention violation", "path", path, "error", err)
			errs = append(errs, err)
			return nil
		}

		e.logger.Debug("resolved artifact", "name", a.Name, "is_table", a.IsTable, "deps", len(deps))
		entries = append(entries, graph.Entry{Artifact: a, Deps: deps})
		return nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}

	return entries, errs, nil
}

// joinErrors flattens already-joined error lists before joining, so batch
// output stays one violation per line.
func joinErrors(errs []error) error {
	var flat []error
	for _, err := range errs {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			flat = append(flat, joined.Unwrap()...)
			continue
		}
		flat = append(flat, err)
	}
	return errors.Join(flat...)
}

// Package artifact derives canonical artifact identities from SQL file paths.
//
// Every file under the SQL root maps 1:1 to a fully-qualified artifact name:
// the relative path with separators replaced by dots and the ".sql" extension
// stripped. A ".table" marker before the extension flags the artifact as a
// table rather than a view, e.g. "catalog/schema/orders.table.sql" resolves
// to "catalog.schema.orders" with IsTable set.
package artifact

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// tableMarker flags table artifacts in file names ("name.table.sql").
const tableMarker = ".table"

// sqlExt is the required file extension for artifact definitions.
const sqlExt = ".sql"

var identSegment = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Artifact is a table or view identified by a fully-qualified name.
type Artifact struct {
	// Name is the dot-separated fully-qualified name, unique in a graph.
	Name string
	// IsTable reports whether the file carried the ".table" marker.
	IsTable bool
	// SourcePath is the defining file, empty for referenced-only artifacts.
	SourcePath string
}

// Defined reports whether the artifact has a backing file.
func (a Artifact) Defined() bool {
	return a.SourcePath != ""
}

// ConventionError reports a file whose path does not derive a valid
// artifact name.
type ConventionError struct {
	Path   string
	Reason string
}

func (e *ConventionError) Error() string {
	return fmt.Sprintf("naming convention violation in %s: %s", e.Path, e.Reason)
}

// Resolve derives the artifact defined by the file at path (relative to
// rootDir) and its dependency set. refs is the extractor output for the
// file's contents; a reference to the artifact's own name is dropped rather
// than recorded as a dependency.
func Resolve(path, rootDir string, refs []string) (Artifact, []string, error) {
	rel, err := filepath.Rel(rootDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return Artifact{}, nil, &ConventionError{
			Path:   path,
			Reason: fmt.Sprintf("file is not under the SQL root %q", rootDir),
		}
	}

	if !strings.HasSuffix(rel, sqlExt) {
		return Artifact{}, nil, &ConventionError{
			Path:   path,
			Reason: fmt.Sprintf("file does not have the %s extension", sqlExt),
		}
	}

	name := strings.TrimSuffix(filepath.ToSlash(rel), sqlExt)
	isTable := strings.HasSuffix(name, tableMarker)
	if isTable {
		name = strings.TrimSuffix(name, tableMarker)
	}
	name = strings.ReplaceAll(name, "/", ".")

	if name == "" {
		return Artifact{}, nil, &ConventionError{
			Path:   path,
			Reason: "derived artifact name is empty",
		}
	}
	for _, seg := range strings.Split(name, ".") {
		if !identSegment.MatchString(seg) {
			return Artifact{}, nil, &ConventionError{
				Path:   path,
				Reason: fmt.Sprintf("segment %q in derived name %q is not a valid identifier", seg, name),
			}
		}
	}

	deps := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == name {
			continue
		}
		deps = append(deps, ref)
	}

	a := Artifact{
		Name:       name,
		IsTable:    isTable,
		SourcePath: path,
	}
	return a, deps, nil
}

package engine

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlgraph/internal/artifact"
	"github.com/leapstack-labs/sqlgraph/internal/graph"
	"github.com/leapstack-labs/sqlgraph/internal/testutil"
)

// writeSQL writes a fixture file, creating parent directories as needed.
func writeSQL(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	return New(Config{SQLDir: dir, Logger: testutil.NewTestLogger(t)})
}

func TestDiscover_BuildsGraph(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "a.sql", `create view a as select * from "a.b"`)
	writeSQL(t, dir, "a/b.sql", `select 1`)

	e := newTestEngine(t, dir)
	result, err := e.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	g := e.Graph()
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	want := []graph.Edge{{From: "a", To: "a.b"}}
	if !reflect.DeepEqual(g.Edges(), want) {
		t.Errorf("Edges() = %v, want %v", g.Edges(), want)
	}
	if result.ArtifactsDefined != 2 || result.ArtifactsReferenced != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestDiscover_ReferencedOnlyArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "marts/revenue.sql", "select * from `warehouse.raw_orders`")

	e := newTestEngine(t, dir)
	result, err := e.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if !e.Graph().HasNode("warehouse.raw_orders") {
		t.Error("referenced-only artifact missing from graph")
	}
	if result.ArtifactsDefined != 1 || result.ArtifactsReferenced != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestDiscover_TableMarker(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "master_tables/customer.table.sql", "select 1")

	e := newTestEngine(t, dir)
	if _, err := e.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	a, ok := e.Graph().Lookup("master_tables.customer")
	if !ok {
		t.Fatal("artifact not found")
	}
	if !a.IsTable {
		t.Error("IsTable = false, want true")
	}
}

func TestDiscover_Conflict(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "x/y.sql", "select 1")
	writeSQL(t, dir, "x/y.table.sql", "select 1")

	e := newTestEngine(t, dir)
	_, err := e.Discover()

	var cerr *graph.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("Discover() error = %v, want *ConflictError", err)
	}
	if cerr.Name != "x.y" {
		t.Errorf("conflict name = %q, want %q", cerr.Name, "x.y")
	}
	if e.Graph() != nil {
		t.Error("no graph should be kept after a failed build")
	}
}

func TestDiscover_CollectsAllViolations(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "bad segment/one.sql", "select 1")
	writeSQL(t, dir, "also-bad/two.sql", "select 1")
	writeSQL(t, dir, "fine/three.sql", "select 1")

	e := newTestEngine(t, dir)
	_, err := e.Discover()
	if err == nil {
		t.Fatal("expected convention errors")
	}

	// Both offending files must appear in one report.
	msg := err.Error()
	if !strings.Contains(msg, "bad segment") || !strings.Contains(msg, "also-bad") {
		t.Errorf("error should name every offending file, got:\n%s", msg)
	}

	var cerr *artifact.ConventionError
	if !errors.As(err, &cerr) {
		t.Errorf("Discover() error = %v, want wrapped *ConventionError", err)
	}
}

func TestDiscover_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "a/one.sql", `select * from "b.two" join "c.three"`)
	writeSQL(t, dir, "b/two.sql", `select * from "c.three"`)
	writeSQL(t, dir, "c/three.sql", "select 1")

	e1 := newTestEngine(t, dir)
	if _, err := e1.Discover(); err != nil {
		t.Fatal(err)
	}
	e2 := newTestEngine(t, dir)
	if _, err := e2.Discover(); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(e1.Graph().Artifacts(), e2.Graph().Artifacts()) {
		t.Error("node sets differ between identical runs")
	}
	if !reflect.DeepEqual(e1.Graph().Edges(), e2.Graph().Edges()) {
		t.Error("edge sets differ between identical runs")
	}
}

func TestDiscover_SkipsHiddenDirsAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "a/one.sql", "select 1")
	writeSQL(t, dir, ".cache/ignored.sql", "select 1")
	writeSQL(t, dir, "a/readme.txt", "not sql")

	e := newTestEngine(t, dir)
	result, err := e.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if result.FilesTotal != 1 {
		t.Errorf("FilesTotal = %d, want 1", result.FilesTotal)
	}
}

func TestDiscover_SelfReferenceDropped(t *testing.T) {
	dir := t.TempDir()
	writeSQL(t, dir, "x/loop.sql", `insert into "x.loop" select * from "x.loop"`)

	e := newTestEngine(t, dir)
	if _, err := e.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if e.Graph().EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", e.Graph().EdgeCount())
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	e := newTestEngine(t, filepath.Join(t.TempDir(), "nope"))
	if _, err := e.Discover(); err == nil {
		t.Error("expected error for missing sql directory")
	}
}

func TestDiscoveryResult_Summary(t *testing.T) {
	r := &DiscoveryResult{FilesTotal: 3, ArtifactsDefined: 3, ArtifactsReferenced: 1, Edges: 2}
	s := r.Summary()
	if !strings.Contains(s, "3 defined") || !strings.Contains(s, "Edges: 2") {
		t.Errorf("unexpected summary: %s", s)
	}
}

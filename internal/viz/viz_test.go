package viz

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgraph/internal/artifact"
	"github.com/leapstack-labs/sqlgraph/internal/engine"
	"github.com/leapstack-labs/sqlgraph/internal/graph"
	"github.com/leapstack-labs/sqlgraph/internal/style"
	"github.com/leapstack-labs/sqlgraph/internal/testutil"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build([]graph.Entry{
		{
			Artifact: artifact.Artifact{Name: "marts.revenue", SourcePath: "marts/revenue.sql"},
			Deps:     []string{"raw_orders"},
		},
		{
			Artifact: artifact.Artifact{Name: "raw_orders", IsTable: true, SourcePath: "raw_orders.table.sql"},
		},
	})
	require.NoError(t, err)
	return g
}

func TestElements(t *testing.T) {
	resolver, err := style.NewResolver([]style.Rule{
		{Name: "source", Pattern: "^raw_", Color: "#5D8AA8", Shape: "ellipse"},
	})
	require.NoError(t, err)

	elements := Elements(testGraph(t), resolver, "")
	require.Len(t, elements, 3)

	node0, ok := elements[0].Data.(NodeData)
	require.True(t, ok)
	assert.Equal(t, "marts.revenue", node0.ID)
	assert.Equal(t, style.Default.Name, node0.ArtifactType)

	node1 := elements[1].Data.(NodeData)
	assert.Equal(t, "source", node1.ArtifactType)
	assert.True(t, node1.IsTable)

	edge, ok := elements[2].Data.(EdgeData)
	require.True(t, ok)
	assert.Equal(t, "marts.revenue", edge.Source)
	assert.Equal(t, "raw_orders", edge.Target)
}

func TestElements_RootTypeOverridesRules(t *testing.T) {
	resolver, err := style.NewResolver([]style.Rule{
		{Name: "source", Pattern: "^raw_", Color: "#5D8AA8", Shape: "ellipse"},
	})
	require.NoError(t, err)

	elements := Elements(testGraph(t), resolver, "raw_orders")
	node1 := elements[1].Data.(NodeData)
	assert.Equal(t, style.Root.Name, node1.ArtifactType)
}

func TestStylesheet(t *testing.T) {
	rules := []style.Rule{
		{Name: "source", Pattern: "^raw_", Color: "#5D8AA8", Shape: "ellipse"},
	}

	entries := Stylesheet(rules, graph.ModeDependency)
	require.Len(t, entries, 4) // node, edge, one rule, root

	assert.Equal(t, "node", entries[0].Selector)
	assert.Equal(t, dependencyEdgeColor, entries[1].Style["target-arrow-color"])
	assert.Equal(t, `[artifact_type = "source"]`, entries[2].Selector)

	last := entries[len(entries)-1]
	assert.Equal(t, `[artifact_type = "root"]`, last.Selector)
	assert.Equal(t, style.Root.Color, last.Style["background-color"])
}

func TestStylesheet_ParentEdgeColor(t *testing.T) {
	entries := Stylesheet(nil, graph.ModeParent)
	assert.Equal(t, parentEdgeColor, entries[1].Style["target-arrow-color"])
}

func TestLayoutName(t *testing.T) {
	assert.Equal(t, "concentric", LayoutName("default", ""))
	assert.Equal(t, "breadthfirst", LayoutName("default", "x.y"))
	assert.Equal(t, "grid", LayoutName("grid", "x.y"))
	assert.Equal(t, "concentric", LayoutName("", ""))
}

func newTestServer(t *testing.T, watch bool) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "marts"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "marts", "revenue.sql"),
		[]byte("select * from `warehouse.raw_orders`"), 0o644))

	eng := engine.New(engine.Config{SQLDir: dir, Logger: testutil.NewTestLogger(t)})
	srv, err := NewServer(Config{
		Engine: eng,
		Mode:   graph.ModeDependency,
		Port:   0,
		Watch:  watch,
		Logger: testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return srv
}

func TestServer_RebuildAndIndex(t *testing.T) {
	srv := newTestServer(t, false)
	require.NoError(t, srv.rebuild(true))

	rec := httptest.NewRecorder()
	srv.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "cytoscape")
	assert.Contains(t, body, "marts.revenue")
	assert.Contains(t, body, "warehouse.raw_orders")
	assert.False(t, strings.Contains(body, "/events"), "live reload should be off without watch")
}

func TestServer_LiveReloadScriptWhenWatching(t *testing.T) {
	srv := newTestServer(t, true)
	require.NoError(t, srv.rebuild(true))

	rec := httptest.NewRecorder()
	srv.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "/events")
}

func TestServer_RebuildUnknownRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sql"), []byte("select 1"), 0o644))

	eng := engine.New(engine.Config{SQLDir: dir, Logger: testutil.NewTestLogger(t)})
	srv, err := NewServer(Config{
		Engine:       eng,
		Mode:         graph.ModeDependency,
		RootArtifact: "missing.artifact",
		Logger:       testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	err = srv.rebuild(true)
	var uerr *graph.UnknownArtifactError
	require.ErrorAs(t, err, &uerr)
}

func TestNewServer_BadRules(t *testing.T) {
	_, err := NewServer(Config{
		Rules: []style.Rule{{Name: "x", Pattern: "([", Color: "#fff", Shape: "ellipse"}},
	})
	require.Error(t, err)
}

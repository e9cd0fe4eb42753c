package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(old)
		ResetConfig()
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultSQLDir, cfg.SQLDir)
	assert.Equal(t, DefaultRelationship, cfg.Relationship)
	assert.Equal(t, DefaultGraphType, cfg.GraphType)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.True(t, cfg.Watch)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `sql_dir: warehouse/sql
relationship: parent
port: 9000
artifact_types:
  - name: source
    pattern: "^raw_"
    color: "#5D8AA8"
    shape: ellipse
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlgraph.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "warehouse/sql", cfg.SQLDir)
	assert.Equal(t, "parent", cfg.Relationship)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "sqlgraph.yaml", GetConfigFileUsed())

	rules, err := cfg.StyleRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "source", rules[0].Name)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlgraph.yaml"), []byte("sql_dir: from_file\n"), 0o644))
	chdir(t, dir)
	t.Setenv("SQLGRAPH_SQL_DIR", "from_env")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.SQLDir)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SQLGRAPH_SQL_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("sql-dir", "", "")
	flags.String("root-artifact", "", "")
	require.NoError(t, flags.Parse([]string{"--sql-dir", "from_flag", "--root-artifact", "x.y"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.SQLDir)
	assert.Equal(t, "x.y", cfg.RootArtifact)
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	chdir(t, t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port, "an unset flag must not clobber the default")
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph_type: breadthfirst\n"), 0o644))
	chdir(t, t.TempDir())

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "breadthfirst", cfg.GraphType)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sqlgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml"), 0o644))
	chdir(t, dir)

	_, err := LoadConfig("", nil)
	require.Error(t, err)
}

func TestStyleRules_SeparateFileWins(t *testing.T) {
	dir := t.TempDir()
	stylesPath := filepath.Join(dir, "styles.yaml")
	styles := `artifact_types:
  - name: mart
    pattern: "marts"
    color: "#50C878"
    shape: rectangle
`
	require.NoError(t, os.WriteFile(stylesPath, []byte(styles), 0o644))

	cfg := &Config{
		StylesPath:    stylesPath,
		ArtifactTypes: nil,
	}
	rules, err := cfg.StyleRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "mart", rules[0].Name)
}

// Package config provides configuration management for the sqlgraph CLI.
// Configuration is layered: defaults, then sqlgraph.yaml, then SQLGRAPH_*
// environment variables, then flags (highest priority).
package config

import (
	"github.com/leapstack-labs/sqlgraph/internal/style"
)

// Config holds all CLI configuration options.
type Config struct {
	// SQLDir is the root directory of .sql artifact definitions.
	SQLDir string `koanf:"sql_dir"`
	// Relationship is the subgraph direction: "dependency" or "parent".
	Relationship string `koanf:"relationship"`
	// RootArtifact optionally roots the subgraph at one artifact.
	RootArtifact string `koanf:"root_artifact"`
	// GraphType is the browser layout name ("default" picks one based on
	// whether a root artifact is set).
	GraphType string `koanf:"graph_type"`
	// StylesPath optionally points at a separate style config file.
	StylesPath string `koanf:"styles"`
	// ArtifactTypes are inline style rules, used when StylesPath is empty.
	ArtifactTypes []style.Rule `koanf:"artifact_types"`

	// Port is the viz server port.
	Port int `koanf:"port"`
	// Watch enables live reload when .sql files change.
	Watch bool `koanf:"watch"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
}

// Default configuration values.
const (
	DefaultSQLDir       = "."
	DefaultRelationship = "dependency"
	DefaultGraphType    = "default"
	DefaultPort         = 8765
	DefaultOutput       = "auto" // TTY=text, piped=markdown
)

// StyleRules returns the effective styling rules: the separate styles file
// when configured, otherwise the inline artifact_types from the config.
func (c *Config) StyleRules() ([]style.Rule, error) {
	if c.StylesPath != "" {
		return style.Load(c.StylesPath)
	}
	return c.ArtifactTypes, nil
}

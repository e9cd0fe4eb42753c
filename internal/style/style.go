// Package style maps artifact names to visual attributes through an ordered
// list of pattern rules. The first rule whose pattern matches wins; artifacts
// matching no rule get the default style.
package style

import (
	"fmt"
	"regexp"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Rule is one styling rule from the config file. Pattern is a regular
// expression matched case-insensitively against artifact names.
type Rule struct {
	Name    string `koanf:"name"`
	Pattern string `koanf:"pattern"`
	Color   string `koanf:"color"`
	Shape   string `koanf:"shape"`
}

// Style is the resolved set of visual attributes for one artifact.
type Style struct {
	Name  string
	Color string
	Shape string
}

// Default is the fallback style for artifacts matching no rule.
var Default = Style{Name: "other", Color: "lightgrey", Shape: "rectangle"}

// Root is the fixed style for the subgraph root artifact.
var Root = Style{Name: "root", Color: "#000000", Shape: "triangle"}

// Resolver resolves artifact names against compiled rules in order.
type Resolver struct {
	rules    []Rule
	patterns []*regexp.Regexp
}

// NewResolver validates and compiles the rules. Every field is required and
// the pattern must be a valid regular expression.
func NewResolver(rules []Rule) (*Resolver, error) {
	r := &Resolver{rules: rules}
	for i, rule := range rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("artifact type at index %d: missing field \"name\"", i)
		}
		if rule.Pattern == "" {
			return nil, fmt.Errorf("artifact type %q: missing field \"pattern\"", rule.Name)
		}
		if rule.Color == "" {
			return nil, fmt.Errorf("artifact type %q: missing field \"color\"", rule.Name)
		}
		if rule.Shape == "" {
			return nil, fmt.Errorf("artifact type %q: missing field \"shape\"", rule.Name)
		}
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("artifact type %q: invalid pattern: %w", rule.Name, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Rules returns the configured rules in order.
func (r *Resolver) Rules() []Rule {
	return r.rules
}

// Resolve returns the style for an artifact name: the first rule whose
// pattern matches anywhere in the name wins, otherwise Default.
func (r *Resolver) Resolve(name string) Style {
	for i, re := range r.patterns {
		if re.MatchString(name) {
			rule := r.rules[i]
			return Style{Name: rule.Name, Color: rule.Color, Shape: rule.Shape}
		}
	}
	return Default
}

// Load reads styling rules from a YAML file of the form:
//
//	artifact_types:
//	  - name: source
//	    pattern: "^raw_"
//	    color: "#5D8AA8"
//	    shape: ellipse
func Load(path string) ([]Rule, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading style config %s: %w", path, err)
	}
	if !k.Exists("artifact_types") {
		return nil, fmt.Errorf("style config %s: missing key \"artifact_types\"", path)
	}

	var rules []Rule
	if err := k.Unmarshal("artifact_types", &rules); err != nil {
		return nil, fmt.Errorf("style config %s: unable to decode artifact_types: %w", path, err)
	}
	return rules, nil
}

// Package rules loads the heuristic pattern tables used by the triage pipeline.
package rules

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/mikey/email-triage/internal/core"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// File is the on-disk shape of a rule table
type File struct {
	Courtesy   []Group `yaml:"courtesy"`
	Actionable []Group `yaml:"actionable"`
}

// Group is a named list of terms and raw patterns
type Group struct {
	Name     string   `yaml:"name"`
	Terms    []string `yaml:"terms"`
	Patterns []string `yaml:"patterns"`
}

// Default compiles the embedded rule tables
func Default() (*core.RuleSet, error) {
	return Parse(defaultRules)
}

// Load compiles the rule tables at path, or the embedded defaults when path is empty
func Load(path string) (*core.RuleSet, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes and compiles a YAML rule table
func Parse(data []byte) (*core.RuleSet, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if len(f.Courtesy) == 0 {
		return nil, fmt.Errorf("rules must define at least one courtesy group")
	}
	return core.NewRuleSet(toCore(f.Courtesy), toCore(f.Actionable))
}

func toCore(groups []Group) []core.RuleGroup {
	out := make([]core.RuleGroup, len(groups))
	for i, g := range groups {
		out[i] = core.RuleGroup{Name: g.Name, Terms: g.Terms, Patterns: g.Patterns}
	}
	return out
}

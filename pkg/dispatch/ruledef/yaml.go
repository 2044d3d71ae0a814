package ruledef

import (
	"gopkg.in/yaml.v3"
)

// yamlDocument mirrors the YAML structure of a rule set definition
// before rule construction. Rules stay as raw nodes so each keeps its
// source position; Default stays a node to distinguish an absent
// default from an explicit null.
type yamlDocument struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Rules       []yaml.Node `yaml:"rules"`
	Default     yaml.Node   `yaml:"default"`
}

// yamlRule represents one rule entry. Exactly one of Predicate (a
// registry reference) or When (an inline condition tree) must be set.
// Value stays a node so a missing value is distinguishable from an
// explicit null.
type yamlRule struct {
	Predicate string    `yaml:"predicate"`
	When      yaml.Node `yaml:"when"`
	Value     yaml.Node `yaml:"value"`
}

// yamlCondition represents one node of a condition tree. Exactly one of
// the Field, Predicate, All, Any, or Not forms must be used.
type yamlCondition struct {
	Field     string      `yaml:"field"`
	Op        string      `yaml:"op"`
	Value     yaml.Node   `yaml:"value"`
	Predicate string      `yaml:"predicate"`
	All       []yaml.Node `yaml:"all"`
	Any       []yaml.Node `yaml:"any"`
	Not       yaml.Node   `yaml:"not"`
}

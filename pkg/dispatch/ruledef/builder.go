package ruledef

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	"mercator-hq/callisto/pkg/dispatch"
	"mercator-hq/callisto/pkg/dispatch/match"
)

// knownOps lists the comparison operators a condition may use.
var knownOps = map[string]bool{
	"eq":          true,
	"ne":          true,
	"gt":          true,
	"gte":         true,
	"lt":          true,
	"lte":         true,
	"contains":    true,
	"matches":     true,
	"starts_with": true,
	"ends_with":   true,
	"in":          true,
	"exists":      true,
}

// Parse builds a rule set from YAML definition bytes. Named predicates
// are resolved against reg; reg may be nil when the definition uses
// only inline conditions. All definition errors are collected, so a
// failed parse reports every problem at once.
func Parse(data []byte, reg *Registry) (*dispatch.RuleSet[map[string]interface{}, interface{}], error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &DefinitionError{Message: "invalid YAML", Cause: err}
	}
	if root.Kind == 0 {
		return nil, &DefinitionError{Message: "empty definition"}
	}

	var doc yamlDocument
	if err := root.Decode(&doc); err != nil {
		return nil, &DefinitionError{
			Message: "invalid definition structure",
			Line:    root.Line,
			Column:  root.Column,
			Cause:   err,
		}
	}

	b := newBuilder(reg)
	rs := b.buildDocument(&doc)
	if err := b.errors.ToError(); err != nil {
		return nil, err
	}

	return rs, nil
}

// ParseReader builds a rule set from a YAML definition stream.
func ParseReader(r io.Reader, reg *Registry) (*dispatch.RuleSet[map[string]interface{}, interface{}], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DefinitionError{Message: "failed to read definition", Cause: err}
	}

	return Parse(data, reg)
}

// builder constructs a rule set from intermediate YAML structures,
// accumulating definition errors as it goes.
type builder struct {
	registry *Registry
	errors   *ErrorList
}

// newBuilder creates a builder resolving names against reg.
func newBuilder(reg *Registry) *builder {
	return &builder{
		registry: reg,
		errors:   NewErrorList(),
	}
}

// buildDocument transforms a yamlDocument into a rule set.
func (b *builder) buildDocument(doc *yamlDocument) *dispatch.RuleSet[map[string]interface{}, interface{}] {
	rs := dispatch.NewRuleSet[map[string]interface{}, interface{}]()
	if doc.Name != "" {
		rs.WithName(doc.Name)
	}

	if len(doc.Rules) == 0 {
		b.errors.Add(&DefinitionError{Message: "definition has no rules"})
		return nil
	}

	for i := range doc.Rules {
		b.addRule(rs, &doc.Rules[i], i)
	}

	// An absent default and an explicit `default: null` differ: the
	// first leaves the rule set without a fallback, the second sets a
	// nil one.
	if doc.Default.Kind != 0 {
		var value interface{}
		if err := doc.Default.Decode(&value); err != nil {
			b.addErrorAt(&doc.Default, "invalid default: %v", err)
		} else {
			rs.SetDefault(value)
		}
	}

	return rs
}

// addRule builds one rule entry and adds it to the rule set.
func (b *builder) addRule(rs *dispatch.RuleSet[map[string]interface{}, interface{}], node *yaml.Node, index int) {
	var rule yamlRule
	if err := node.Decode(&rule); err != nil {
		b.addErrorAt(node, "invalid rule at index %d: %v", index, err)
		return
	}

	var p dispatch.Predicate[map[string]interface{}]
	switch {
	case rule.Predicate != "" && rule.When.Kind != 0:
		b.addErrorAt(node, "rule at index %d sets both 'predicate' and 'when'", index)
		return
	case rule.Predicate != "":
		p = b.registryPredicate(rule.Predicate, node)
	case rule.When.Kind != 0:
		p = b.buildCondition(&rule.When)
	default:
		b.addErrorAt(node, "rule at index %d needs 'predicate' or 'when'", index)
		return
	}
	if p == nil {
		return
	}

	if rule.Value.Kind == 0 {
		b.addErrorAt(node, "rule at index %d is missing 'value'", index)
		return
	}
	var value interface{}
	if err := rule.Value.Decode(&value); err != nil {
		b.addErrorAt(&rule.Value, "invalid value: %v", err)
		return
	}

	rs.AddRule(p, value)
}

// buildCondition transforms one condition node into a predicate.
// Returns nil after recording an error.
func (b *builder) buildCondition(node *yaml.Node) dispatch.Predicate[map[string]interface{}] {
	var cond yamlCondition
	if err := node.Decode(&cond); err != nil {
		b.addErrorAt(node, "invalid condition: %v", err)
		return nil
	}

	forms := 0
	if cond.Field != "" {
		forms++
	}
	if cond.Predicate != "" {
		forms++
	}
	if len(cond.All) > 0 {
		forms++
	}
	if len(cond.Any) > 0 {
		forms++
	}
	if cond.Not.Kind != 0 {
		forms++
	}

	if forms == 0 {
		b.addErrorAt(node, "empty condition: expected 'field', 'predicate', 'all', 'any' or 'not'")
		return nil
	}
	if forms > 1 {
		b.addErrorAt(node, "ambiguous condition: only one of 'field', 'predicate', 'all', 'any', 'not' may be set")
		return nil
	}

	switch {
	case cond.Predicate != "":
		return b.registryPredicate(cond.Predicate, node)

	case len(cond.All) > 0:
		children := b.buildChildren(cond.All)
		if children == nil {
			return nil
		}
		return match.All(children...)

	case len(cond.Any) > 0:
		children := b.buildChildren(cond.Any)
		if children == nil {
			return nil
		}
		return match.Any(children...)

	case cond.Not.Kind != 0:
		child := b.buildCondition(&cond.Not)
		if child == nil {
			return nil
		}
		return match.Not(child)

	default:
		return b.buildComparison(&cond, node)
	}
}

// buildChildren builds every child condition, accumulating errors
// across all of them. Returns nil if any child failed.
func (b *builder) buildChildren(nodes []yaml.Node) []dispatch.Predicate[map[string]interface{}] {
	children := make([]dispatch.Predicate[map[string]interface{}], 0, len(nodes))
	failed := false
	for i := range nodes {
		child := b.buildCondition(&nodes[i])
		if child == nil {
			failed = true
			continue
		}
		children = append(children, child)
	}
	if failed {
		return nil
	}

	return children
}

// buildComparison transforms a field condition into a predicate.
func (b *builder) buildComparison(cond *yamlCondition, node *yaml.Node) dispatch.Predicate[map[string]interface{}] {
	if cond.Op == "" {
		b.addErrorAt(node, "condition on field %q is missing 'op'", cond.Field)
		return nil
	}
	if !knownOps[cond.Op] {
		b.addErrorAt(node, "unknown operator %q", cond.Op)
		return nil
	}

	fc := match.Field(cond.Field)

	if cond.Op == "exists" {
		return fc.Exists()
	}

	if cond.Value.Kind == 0 {
		b.addErrorAt(node, "operator %q requires 'value'", cond.Op)
		return nil
	}

	switch cond.Op {
	case "matches", "starts_with", "ends_with":
		var s string
		if err := cond.Value.Decode(&s); err != nil {
			b.addErrorAt(&cond.Value, "operator %q requires a string value: %v", cond.Op, err)
			return nil
		}
		switch cond.Op {
		case "matches":
			if _, err := regexp.Compile(s); err != nil {
				b.addErrorAt(&cond.Value, "invalid pattern %q: %v", s, err)
				return nil
			}
			return fc.MatchesPattern(s)
		case "starts_with":
			return fc.StartsWith(s)
		default:
			return fc.EndsWith(s)
		}

	case "in":
		var values []interface{}
		if err := cond.Value.Decode(&values); err != nil {
			b.addErrorAt(&cond.Value, "operator \"in\" requires a sequence value: %v", err)
			return nil
		}
		return fc.In(values...)
	}

	var value interface{}
	if err := cond.Value.Decode(&value); err != nil {
		b.addErrorAt(&cond.Value, "invalid value: %v", err)
		return nil
	}

	switch cond.Op {
	case "eq":
		return fc.Equals(value)
	case "ne":
		return fc.NotEquals(value)
	case "gt":
		return fc.GreaterThan(value)
	case "gte":
		return fc.AtLeast(value)
	case "lt":
		return fc.LessThan(value)
	case "lte":
		return fc.AtMost(value)
	default:
		return fc.Contains(value)
	}
}

// registryPredicate resolves a named predicate reference.
func (b *builder) registryPredicate(name string, node *yaml.Node) dispatch.Predicate[map[string]interface{}] {
	if b.registry == nil {
		b.addErrorAt(node, "predicate %q referenced but no registry provided", name)
		return nil
	}

	p, ok := b.registry.Get(name)
	if !ok {
		b.addErrorAt(node, "unknown predicate %q", name)
		return nil
	}

	return p
}

// addErrorAt records a definition error at the node's source position.
func (b *builder) addErrorAt(node *yaml.Node, format string, args ...interface{}) {
	line, column := 0, 0
	if node != nil {
		line, column = node.Line, node.Column
	}

	b.errors.Add(&DefinitionError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	})
}

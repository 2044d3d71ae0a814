// Package ruledef builds dispatch rule sets from declarative YAML
// definitions. Definitions describe ordered rules over
// map[string]interface{} contexts with interface{} values; predicates
// come either from a named-predicate Registry or from inline condition
// trees built on the match package.
//
// # Definition Schema
//
//	name: access-tiers
//	description: Role based tier assignment.
//	rules:
//	  - predicate: is_admin          # registry reference
//	    value: Administrator
//	  - when:                        # inline condition
//	      field: postCount
//	      op: gt
//	      value: 100
//	    value: Power User
//	  - when:
//	      any:
//	        - { field: region, op: eq, value: EU }
//	        - { predicate: is_priority }
//	    value: Expedited
//	default: Member
//
// Each rule sets exactly one of predicate (a name registered in the
// Registry) or when (a condition tree). Condition nodes take one of
// five forms: {field, op, value}, {predicate}, {all: [...]},
// {any: [...]}, {not: node}. The operators are eq, ne, gt, gte, lt,
// lte, contains, matches, starts_with, ends_with, in, and exists
// (exists takes no value).
//
// An absent default leaves the rule set without a fallback, so
// resolution can fail with a no-match error; an explicit `default:
// null` sets a nil fallback.
//
// # Predicate Identity
//
// The registry returns the same predicate for every reference to a
// name, so two rules naming the same predicate collapse into one rule
// holding the later value. Inline conditions construct a fresh
// predicate per rule and never collapse.
//
// # Errors
//
// Parse collects every definition error instead of stopping at the
// first. Errors carry the line and column of the failing YAML node;
// multiple errors come back as an *ErrorList.
//
// Definitions are parsed from bytes or an io.Reader only. Loading them
// from files, URLs, or watchers is up to the caller.
package ruledef

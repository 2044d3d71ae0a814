package dispatch

import (
	"reflect"

	"github.com/google/uuid"
)

// Predicate tests an input for a match. Implementations should be pure:
// resolution calls Match in declaration order and memoization reuses
// results by input, so a predicate that reads hidden mutable state
// breaks both guarantees.
//
// Predicate values carry rule identity within a RuleSet: adding the same
// value twice updates one rule, adding two distinct values adds two
// rules. PredicateFunc allocates a fresh identity on every call.
type Predicate[C any] interface {
	// Match reports whether the input satisfies the predicate.
	Match(input C) bool
}

// funcPredicate adapts a plain function to the Predicate interface.
// It is a pointer so each wrap has its own identity.
type funcPredicate[C any] struct {
	fn func(C) bool
}

// Match reports whether the input satisfies the wrapped function.
func (p *funcPredicate[C]) Match(input C) bool {
	return p.fn(input)
}

// PredicateFunc wraps a plain function as a Predicate. Each call
// allocates a distinct predicate: wrapping the same function twice
// yields two rules as far as AddRule is concerned. Hold on to the
// returned value to re-add or replace the rule later.
// PredicateFunc(nil) returns nil.
func PredicateFunc[C any](fn func(C) bool) Predicate[C] {
	if fn == nil {
		return nil
	}
	return &funcPredicate[C]{fn: fn}
}

// Entry is a read-only view of one rule: a predicate paired with the
// value returned when that predicate is the first to match.
type Entry[C, V any] struct {
	// Predicate is the rule's condition.
	Predicate Predicate[C]

	// Value is returned when Predicate is the first to match.
	Value V
}

// RuleSet is an ordered collection of rules, each pairing a predicate
// with a value, plus an optional default value for the no-match case.
// Rules are evaluated strictly in the order they were added.
//
// Build a set with the chainable AddRule, AddRuleFunc, SetDefault and
// WithName, then evaluate it with Resolve or through a Memoizer.
// Construction is not synchronized: build a set fully before sharing it.
// Once built, the accessors and Resolve are safe for concurrent use
// because nothing mutates the set during evaluation.
type RuleSet[C, V any] struct {
	// id uniquely identifies this rule set across its lifetime.
	// Memoizers key their caches by it.
	id string

	// name is an optional human-readable label for diagnostics.
	name string

	// entries holds the rules in insertion order.
	entries []Entry[C, V]

	// index maps predicate identity to its slot in entries.
	index map[Predicate[C]]int

	// defaultValue is returned when no predicate matches.
	defaultValue V

	// defaultSet records whether a default was provided. A zero-valued
	// default is distinct from no default.
	defaultSet bool

	// err is the first build error; once set, the rule set cannot be
	// resolved and further mutation is ignored.
	err error
}

// NewRuleSet creates an empty rule set for inputs of type C and result
// values of type V.
func NewRuleSet[C, V any]() *RuleSet[C, V] {
	return &RuleSet[C, V]{
		id:    uuid.NewString(),
		index: make(map[Predicate[C]]int),
	}
}

// AddRule appends a rule and returns the receiver for chaining.
//
// Adding a predicate value that is already in the set replaces the
// existing rule's value but keeps its original position, so a re-add
// never changes evaluation order. A nil predicate records an
// InvalidRuleError and leaves the set unchanged; the error is surfaced
// by Err and by Resolve.
func (rs *RuleSet[C, V]) AddRule(p Predicate[C], value V) *RuleSet[C, V] {
	if rs.err != nil {
		return rs
	}

	if p == nil {
		rs.err = &InvalidRuleError{
			SetID:    rs.id,
			SetName:  rs.name,
			Position: len(rs.entries),
			Reason:   "predicate is nil",
		}
		return rs
	}

	// Predicates of uncomparable types cannot be map keys; each add of
	// one is treated as a new rule.
	if reflect.TypeOf(p).Comparable() {
		if i, ok := rs.index[p]; ok {
			rs.entries[i] = Entry[C, V]{Predicate: p, Value: value}
			return rs
		}
		rs.index[p] = len(rs.entries)
	}

	rs.entries = append(rs.entries, Entry[C, V]{Predicate: p, Value: value})
	return rs
}

// AddRuleFunc appends a rule whose predicate is a plain function. It is
// shorthand for AddRule(PredicateFunc(fn), value); because each call
// wraps fn afresh, every AddRuleFunc adds a new rule even for the same
// function.
func (rs *RuleSet[C, V]) AddRuleFunc(fn func(C) bool, value V) *RuleSet[C, V] {
	return rs.AddRule(PredicateFunc[C](fn), value)
}

// SetDefault sets the fallback value returned when no predicate matches
// and returns the receiver for chaining. Calling it again overwrites the
// previous default.
func (rs *RuleSet[C, V]) SetDefault(value V) *RuleSet[C, V] {
	if rs.err != nil {
		return rs
	}

	rs.defaultValue = value
	rs.defaultSet = true
	return rs
}

// WithName attaches a human-readable label used in errors, logs and
// metrics. Names carry no identity: two sets with the same name are
// still distinct sets.
func (rs *RuleSet[C, V]) WithName(name string) *RuleSet[C, V] {
	rs.name = name
	return rs
}

// Entries returns the rules in evaluation order. The returned slice is a
// copy; modifying it does not affect the rule set.
func (rs *RuleSet[C, V]) Entries() []Entry[C, V] {
	entries := make([]Entry[C, V], len(rs.entries))
	copy(entries, rs.entries)
	return entries
}

// Default returns the fallback value and whether one has been set.
func (rs *RuleSet[C, V]) Default() (V, bool) {
	return rs.defaultValue, rs.defaultSet
}

// Len returns the number of rules in the set.
func (rs *RuleSet[C, V]) Len() int {
	return len(rs.entries)
}

// ID returns the identifier assigned at construction. Identifiers are
// unique per set and never reused, so a cache entry keyed by one can
// never be served to a different set.
func (rs *RuleSet[C, V]) ID() string {
	return rs.id
}

// Name returns the label set via WithName, or the empty string.
func (rs *RuleSet[C, V]) Name() string {
	return rs.name
}

// Err returns the first build error recorded by AddRule, or nil. A rule
// set with a non-nil Err cannot be resolved.
func (rs *RuleSet[C, V]) Err() error {
	return rs.err
}

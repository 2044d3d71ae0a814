package dispatch

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNilRuleSet indicates a nil rule set was passed to a resolver.
	ErrNilRuleSet = errors.New("rule set is nil")

	// ErrInvalidConfig indicates invalid memoizer configuration.
	ErrInvalidConfig = errors.New("invalid memoizer configuration")
)

// InvalidRuleError indicates a rule set was built with an unusable rule.
// It is recorded by AddRule at build time, before any evaluation, and is
// surfaced both by RuleSet.Err and by Resolve.
type InvalidRuleError struct {
	SetID    string
	SetName  string
	Position int
	Reason   string
}

// Error returns the error message.
func (e *InvalidRuleError) Error() string {
	if e.SetName != "" {
		return fmt.Sprintf("rule set %s (%s): invalid rule at position %d: %s", e.SetName, e.SetID, e.Position, e.Reason)
	}
	return fmt.Sprintf("rule set %s: invalid rule at position %d: %s", e.SetID, e.Position, e.Reason)
}

// NoMatchError indicates no predicate matched the input and the rule set
// has no default value. It identifies the rule set that failed to match.
type NoMatchError struct {
	SetID   string
	SetName string
	Rules   int
}

// Error returns the error message.
func (e *NoMatchError) Error() string {
	if e.SetName != "" {
		return fmt.Sprintf("rule set %s (%s): no rule matched (%d rules, no default)", e.SetName, e.SetID, e.Rules)
	}
	return fmt.Sprintf("rule set %s: no rule matched (%d rules, no default)", e.SetID, e.Rules)
}

// CacheKeyError indicates a memoized resolution could not derive a cache
// key from the input. It occurs only on the memoized path; the plain
// Resolve function never serializes inputs.
type CacheKeyError struct {
	SetID   string
	SetName string
	Cause   error
}

// Error returns the error message.
func (e *CacheKeyError) Error() string {
	if e.SetName != "" {
		return fmt.Sprintf("rule set %s (%s): cannot derive cache key from input: %v", e.SetName, e.SetID, e.Cause)
	}
	return fmt.Sprintf("rule set %s: cannot derive cache key from input: %v", e.SetID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *CacheKeyError) Unwrap() error {
	return e.Cause
}

package dispatch

// ResolverFunc is the function shape shared by Resolve and the memoized
// wrappers produced by Memoize.
type ResolverFunc[C, V any] func(input C, rs *RuleSet[C, V]) (V, error)

// Resolve evaluates input against the rule set and returns the value of
// the first rule whose predicate reports true.
//
// Rules are tried strictly in insertion order and evaluation stops at the
// first match, so predicates after the winner are never called. If no
// predicate matches, the default value is returned when one was set;
// otherwise Resolve returns a NoMatchError identifying the set.
//
// Predicates run without a recovery wrapper: a panicking predicate
// propagates to the caller unchanged. A rule set carrying a build error
// (see RuleSet.Err) fails with that error before any predicate runs.
func Resolve[C, V any](input C, rs *RuleSet[C, V]) (V, error) {
	var zero V

	if rs == nil {
		return zero, ErrNilRuleSet
	}
	if rs.err != nil {
		return zero, rs.err
	}

	for _, entry := range rs.entries {
		if entry.Predicate.Match(input) {
			return entry.Value, nil
		}
	}

	if rs.defaultSet {
		return rs.defaultValue, nil
	}

	return zero, &NoMatchError{
		SetID:   rs.id,
		SetName: rs.name,
		Rules:   len(rs.entries),
	}
}

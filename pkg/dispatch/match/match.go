package match

import (
	"mercator-hq/callisto/pkg/dispatch"
)

// All returns a predicate that is true when every child predicate
// matches. Evaluation short-circuits on the first child that does not
// match. With no children, All matches everything. A nil child imposes
// no constraint and is treated as matching.
func All[C any](children ...dispatch.Predicate[C]) dispatch.Predicate[C] {
	return dispatch.PredicateFunc(func(input C) bool {
		for _, child := range children {
			if child == nil {
				continue
			}
			if !child.Match(input) {
				return false
			}
		}
		return true
	})
}

// Any returns a predicate that is true when at least one child
// predicate matches. Evaluation short-circuits on the first child that
// matches. With no children, Any matches nothing. A nil child imposes
// no constraint and is treated as matching.
func Any[C any](children ...dispatch.Predicate[C]) dispatch.Predicate[C] {
	return dispatch.PredicateFunc(func(input C) bool {
		for _, child := range children {
			if child == nil {
				return true
			}
			if child.Match(input) {
				return true
			}
		}
		return false
	})
}

// Not returns a predicate that inverts p. A nil p is treated as
// matching, so Not(nil) matches nothing.
func Not[C any](p dispatch.Predicate[C]) dispatch.Predicate[C] {
	return dispatch.PredicateFunc(func(input C) bool {
		if p == nil {
			return false
		}
		return !p.Match(input)
	})
}

// Always returns a predicate that matches every input. Each call
// returns a distinct predicate, so two Always rules in one rule set
// occupy two positions.
func Always[C any]() dispatch.Predicate[C] {
	return dispatch.PredicateFunc(func(C) bool { return true })
}

// Never returns a predicate that matches no input.
func Never[C any]() dispatch.Predicate[C] {
	return dispatch.PredicateFunc(func(C) bool { return false })
}

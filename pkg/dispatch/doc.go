// Package dispatch implements first-match rule dispatch: an ordered rule
// set pairs predicates with values, and resolving an input returns the
// value of the first predicate that matches.
//
// The package replaces sprawling if/else chains with data. Each rule set
// is built once, then evaluated many times against caller-supplied
// inputs; because rules are values, sets can be composed, passed around
// and resolved against each other (a matched value may itself consult
// another rule set).
//
// # Resolution Flow
//
//	input + RuleSet
//	       ↓
//	For each rule in insertion order:
//	  predicate(input) → true?
//	    Yes → return rule's value (later predicates never run)
//	    No  → next rule
//	       ↓
//	Default set? → return default
//	       ↓
//	NoMatchError
//
// # Basic Usage
//
//	rules := dispatch.NewRuleSet[int, string]().
//	    WithName("size-classes").
//	    AddRuleFunc(func(n int) bool { return n > 100 }, "huge").
//	    AddRuleFunc(func(n int) bool { return n > 10 }, "large").
//	    SetDefault("small")
//
//	label, err := dispatch.Resolve(42, rules)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// label == "large"
//
// # Predicate Identity
//
// Predicates are values of the Predicate interface and carry the
// identity of their rule: AddRule with a predicate already in the set
// replaces that rule's value in place instead of appending. Wrap plain
// functions with PredicateFunc and keep the returned value when a rule
// should be replaceable later:
//
//	heavy := dispatch.PredicateFunc(func(kg float64) bool { return kg > 50 })
//	rates := dispatch.NewRuleSet[float64, float64]().
//	    AddRule(heavy, 80).
//	    SetDefault(20)
//
//	rates.AddRule(heavy, 95) // same rule, new value, same position
//
// # Memoization
//
// A Memoizer caches resolution results keyed by rule set and serialized
// input, so repeated resolutions of equivalent inputs skip predicate
// evaluation entirely:
//
//	memo, err := dispatch.NewMemoizer[map[string]interface{}, string](
//	    dispatch.DefaultMemoizerConfig().WithTTL(time.Minute),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tier, err := memo.Resolve(user, rules)
//
// Failed resolutions (including NoMatchError) are never cached. Inputs
// must be serializable by encoding/json to be memoized; anything else
// fails with a CacheKeyError.
//
// # Errors
//
// The package reports failures through typed errors checked with
// errors.As: InvalidRuleError for rule sets built with a nil predicate,
// NoMatchError when nothing matches and no default is set, and
// CacheKeyError when an input cannot be serialized for caching.
// Predicates themselves are trusted code; a panicking predicate
// propagates to the caller unchanged.
//
// # Thread Safety
//
// Rule set construction is single-threaded by contract: build a set
// fully, then share it. Resolve and the Memoizer are safe for concurrent
// use on built sets; concurrent cache misses for the same (set, input)
// pair collapse into a single computation.
package dispatch

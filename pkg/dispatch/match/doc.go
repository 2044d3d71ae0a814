// Package match provides declarative predicate constructors for
// dispatch rule sets: boolean combinators over any context type, and
// field conditions over map[string]interface{} contexts.
//
// # Combinators
//
// All, Any, and Not compose predicates with short-circuit evaluation,
// and Always and Never are the constant predicates. Combinators work
// with any context type:
//
//	heavy := dispatch.PredicateFunc(func(s Shipment) bool { return s.Weight > 50 })
//	abroad := dispatch.PredicateFunc(func(s Shipment) bool { return s.International })
//	rs := dispatch.NewRuleSet[Shipment, float64]().
//		AddRule(match.All(heavy, abroad), 150.0).
//		AddRule(abroad, 80.0).
//		SetDefault(25.0)
//
// # Field Conditions
//
// Field selects a value by dotted path and builds comparison
// predicates over map contexts:
//
//	rs := dispatch.NewRuleSet[map[string]interface{}, string]().
//		AddRule(match.Field("user.role").Equals("admin"), "Administrator").
//		AddRule(match.Field("postCount").GreaterThan(100), "Power User").
//		SetDefault("Member")
//
// Field predicates are total: a path that does not resolve, a value of
// the wrong type, or a failed numeric coercion evaluates to false
// rather than erroring. Numeric comparisons coerce both sides to
// float64, so int fields compare cleanly against float64 bounds and
// vice versa.
//
// Every constructor returns a distinct predicate identity. Adding the
// same constructed predicate to a rule set twice replaces its value in
// place; constructing twice from identical arguments yields two
// independent rules.
package match

package ruledef

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/dispatch"
)

// accessRegistry builds the registry used by the access tier tests.
func accessRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry()
	register := func(name string, fn func(map[string]interface{}) bool) {
		if err := reg.RegisterFunc(name, fn); err != nil {
			t.Fatalf("RegisterFunc(%q) error = %v", name, err)
		}
	}

	register("is_admin", func(ctx map[string]interface{}) bool {
		b, _ := ctx["isAdmin"].(bool)
		return b
	})
	register("is_moderator", func(ctx map[string]interface{}) bool {
		b, _ := ctx["isModerator"].(bool)
		return b
	})

	return reg
}

func TestParse_RegistryPredicates(t *testing.T) {
	definition := `
name: access-tiers
description: Role based tier assignment.
rules:
  - predicate: is_admin
    value: Administrator
  - predicate: is_moderator
    value: Moderator
  - when:
      field: postCount
      op: gt
      value: 100
    value: Power User
default: Member
`

	rs, err := Parse([]byte(definition), accessRegistry(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if rs.Name() != "access-tiers" {
		t.Errorf("Name() = %q, want %q", rs.Name(), "access-tiers")
	}
	if rs.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", rs.Len())
	}

	tests := []struct {
		name  string
		input map[string]interface{}
		want  interface{}
	}{
		{
			name:  "plain member",
			input: map[string]interface{}{"name": "jane", "postCount": 10},
			want:  "Member",
		},
		{
			name: "admin outranks everything",
			input: map[string]interface{}{
				"isAdmin":     true,
				"isModerator": true,
				"postCount":   999,
			},
			want: "Administrator",
		},
		{
			name:  "moderator",
			input: map[string]interface{}{"isModerator": true},
			want:  "Moderator",
		},
		{
			name:  "power user by post count",
			input: map[string]interface{}{"postCount": 250},
			want:  "Power User",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dispatch.Resolve(tt.input, rs)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_BooleanConditions(t *testing.T) {
	definition := `
name: shipping
rules:
  - when:
      all:
        - { field: weight, op: gt, value: 50 }
        - { field: international, op: eq, value: true }
    value: heavy-international
  - when:
      any:
        - { field: international, op: eq, value: true }
        - { not: { field: weight, op: lte, value: 50 } }
    value: special
default: standard
`

	rs, err := Parse([]byte(definition), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name          string
		weight        int
		international bool
		want          interface{}
	}{
		{"heavy and international", 60, true, "heavy-international"},
		{"light but international", 10, true, "special"},
		{"heavy domestic", 60, false, "special"},
		{"light domestic", 10, false, "standard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := map[string]interface{}{
				"weight":        tt.weight,
				"international": tt.international,
			}
			got, err := dispatch.Resolve(input, rs)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_OperatorCoverage(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		input     map[string]interface{}
		matched   bool
	}{
		{
			name:      "eq string",
			condition: `{ field: role, op: eq, value: admin }`,
			input:     map[string]interface{}{"role": "admin"},
			matched:   true,
		},
		{
			name:      "eq cross-type numeric",
			condition: `{ field: count, op: eq, value: 10.0 }`,
			input:     map[string]interface{}{"count": 10},
			matched:   true,
		},
		{
			name:      "ne",
			condition: `{ field: role, op: ne, value: admin }`,
			input:     map[string]interface{}{"role": "guest"},
			matched:   true,
		},
		{
			name:      "gte at bound",
			condition: `{ field: count, op: gte, value: 10 }`,
			input:     map[string]interface{}{"count": 10},
			matched:   true,
		},
		{
			name:      "lt above bound",
			condition: `{ field: count, op: lt, value: 10 }`,
			input:     map[string]interface{}{"count": 12},
			matched:   false,
		},
		{
			name:      "lte at bound",
			condition: `{ field: count, op: lte, value: 10 }`,
			input:     map[string]interface{}{"count": 10},
			matched:   true,
		},
		{
			name:      "contains substring",
			condition: `{ field: title, op: contains, value: urgent }`,
			input:     map[string]interface{}{"title": "very urgent item"},
			matched:   true,
		},
		{
			name:      "matches pattern",
			condition: `{ field: email, op: matches, value: "^[a-z]+@[a-z.]+$" }`,
			input:     map[string]interface{}{"email": "jane@example.com"},
			matched:   true,
		},
		{
			name:      "starts_with",
			condition: `{ field: sku, op: starts_with, value: EU- }`,
			input:     map[string]interface{}{"sku": "EU-1042"},
			matched:   true,
		},
		{
			name:      "ends_with",
			condition: `{ field: file, op: ends_with, value: .yaml }`,
			input:     map[string]interface{}{"file": "rules.yaml"},
			matched:   true,
		},
		{
			name:      "in hit",
			condition: `{ field: region, op: in, value: [EU, UK] }`,
			input:     map[string]interface{}{"region": "UK"},
			matched:   true,
		},
		{
			name:      "in miss",
			condition: `{ field: region, op: in, value: [EU, UK] }`,
			input:     map[string]interface{}{"region": "US"},
			matched:   false,
		},
		{
			name:      "exists on present field",
			condition: `{ field: nested.flag, op: exists }`,
			input:     map[string]interface{}{"nested": map[string]interface{}{"flag": false}},
			matched:   true,
		},
		{
			name:      "exists on missing field",
			condition: `{ field: nested.flag, op: exists }`,
			input:     map[string]interface{}{},
			matched:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			definition := fmt.Sprintf("rules:\n  - when: %s\n    value: hit\ndefault: miss\n", tt.condition)
			rs, err := Parse([]byte(definition), nil)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			got, err := dispatch.Resolve(tt.input, rs)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}

			want := interface{}("miss")
			if tt.matched {
				want = "hit"
			}
			if got != want {
				t.Errorf("Resolve() = %v, want %v", got, want)
			}
		})
	}
}

func TestParse_NoDefault(t *testing.T) {
	definition := `
name: strict
rules:
  - when: { field: flag, op: exists }
    value: found
`

	rs, err := Parse([]byte(definition), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, ok := rs.Default(); ok {
		t.Error("Default() ok = true, want false")
	}

	_, err = dispatch.Resolve(map[string]interface{}{}, rs)
	var noMatch *dispatch.NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("Resolve() error = %v, want *NoMatchError", err)
	}
	if noMatch.SetName != "strict" {
		t.Errorf("NoMatchError.SetName = %q, want %q", noMatch.SetName, "strict")
	}
}

func TestParse_NullDefault(t *testing.T) {
	definition := `
rules:
  - when: { field: flag, op: exists }
    value: found
default: null
`

	rs, err := Parse([]byte(definition), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, ok := rs.Default(); !ok {
		t.Fatal("Default() ok = false, want true for explicit null")
	}

	got, err := dispatch.Resolve(map[string]interface{}{}, rs)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != nil {
		t.Errorf("Resolve() = %v, want nil", got)
	}
}

func TestParse_SharedPredicateReplacesValue(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterFunc("always", func(map[string]interface{}) bool { return true }); err != nil {
		t.Fatalf("RegisterFunc() error = %v", err)
	}

	definition := `
name: shared
rules:
  - predicate: always
    value: first
  - predicate: always
    value: second
`

	rs, err := Parse([]byte(definition), reg)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// Both rules reference one predicate identity, so the second
	// replaces the first's value in place.
	if got := rs.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}

	got, err := dispatch.Resolve(map[string]interface{}{}, rs)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "second" {
		t.Errorf("Resolve() = %v, want %q", got, "second")
	}
}

func TestParse_Errors(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterFunc("always", func(map[string]interface{}) bool { return true }); err != nil {
		t.Fatalf("RegisterFunc() error = %v", err)
	}

	tests := []struct {
		name       string
		definition string
		registry   *Registry
		wantSubstr string
	}{
		{
			name:       "empty definition",
			definition: "",
			wantSubstr: "empty definition",
		},
		{
			name:       "invalid yaml",
			definition: "rules: [",
			wantSubstr: "invalid YAML",
		},
		{
			name:       "no rules",
			definition: "name: x\n",
			wantSubstr: "definition has no rules",
		},
		{
			name:       "unknown predicate",
			definition: "rules:\n  - predicate: nope\n    value: 1\n",
			registry:   reg,
			wantSubstr: `unknown predicate "nope"`,
		},
		{
			name:       "predicate without registry",
			definition: "rules:\n  - predicate: nope\n    value: 1\n",
			wantSubstr: "no registry provided",
		},
		{
			name:       "unknown operator",
			definition: "rules:\n  - when: { field: x, op: zz, value: 1 }\n    value: 1\n",
			wantSubstr: `unknown operator "zz"`,
		},
		{
			name:       "rule missing value",
			definition: "rules:\n  - predicate: always\n",
			registry:   reg,
			wantSubstr: "missing 'value'",
		},
		{
			name:       "rule with both forms",
			definition: "rules:\n  - predicate: always\n    when: { field: x, op: exists }\n    value: 1\n",
			registry:   reg,
			wantSubstr: "sets both 'predicate' and 'when'",
		},
		{
			name:       "rule with neither form",
			definition: "rules:\n  - value: 1\n",
			wantSubstr: "needs 'predicate' or 'when'",
		},
		{
			name:       "empty condition",
			definition: "rules:\n  - when: {}\n    value: 1\n",
			wantSubstr: "empty condition",
		},
		{
			name:       "ambiguous condition",
			definition: "rules:\n  - when: { field: x, op: exists, predicate: always }\n    value: 1\n",
			registry:   reg,
			wantSubstr: "ambiguous condition",
		},
		{
			name:       "condition missing op",
			definition: "rules:\n  - when: { field: x }\n    value: 1\n",
			wantSubstr: "missing 'op'",
		},
		{
			name:       "operator missing value",
			definition: "rules:\n  - when: { field: x, op: eq }\n    value: 1\n",
			wantSubstr: `operator "eq" requires 'value'`,
		},
		{
			name:       "invalid pattern",
			definition: "rules:\n  - when: { field: x, op: matches, value: '[invalid(' }\n    value: 1\n",
			wantSubstr: "invalid pattern",
		},
		{
			name:       "in with scalar value",
			definition: "rules:\n  - when: { field: x, op: in, value: 5 }\n    value: 1\n",
			wantSubstr: "requires a sequence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Parse([]byte(tt.definition), tt.registry)
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if rs != nil {
				t.Error("Parse() returned a rule set alongside an error")
			}
			if !strings.Contains(err.Error(), tt.wantSubstr) {
				t.Errorf("Parse() error = %q, want substring %q", err.Error(), tt.wantSubstr)
			}
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	definition := "name: x\nrules:\n  - predicate: missing\n    value: 1\n"

	_, err := Parse([]byte(definition), NewRegistry())
	var defErr *DefinitionError
	if !errors.As(err, &defErr) {
		t.Fatalf("Parse() error = %v, want *DefinitionError", err)
	}

	if defErr.Line != 3 {
		t.Errorf("DefinitionError.Line = %d, want 3", defErr.Line)
	}
	if defErr.Column != 5 {
		t.Errorf("DefinitionError.Column = %d, want 5", defErr.Column)
	}
}

func TestParse_AccumulatesErrors(t *testing.T) {
	definition := `
rules:
  - value: 1
  - when: { field: x, op: zz, value: 1 }
    value: 2
`

	_, err := Parse([]byte(definition), nil)
	if err == nil {
		t.Fatal("Parse() error = nil, want error")
	}

	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("Parse() error = %T, want *ErrorList", err)
	}
	if got := list.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
}

func TestParseReader(t *testing.T) {
	definition := `
name: from-reader
rules:
  - when: { field: kind, op: eq, value: a }
    value: 1
default: 0
`

	rs, err := ParseReader(strings.NewReader(definition), nil)
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	got, err := dispatch.Resolve(map[string]interface{}{"kind": "a"}, rs)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != 1 {
		t.Errorf("Resolve() = %v, want 1", got)
	}
}

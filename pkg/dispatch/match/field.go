package match

import (
	"reflect"
	"regexp"
	"strings"

	"mercator-hq/callisto/pkg/dispatch"
)

// FieldCondition selects a field of a map context by dotted path and
// builds predicates that compare its value.
type FieldCondition struct {
	path []string
}

// Field selects a field by dotted path, e.g. Field("user.role") or
// Field("shipment.weight"). The path is walked through nested maps;
// struct values along the path are resolved by reflection with
// case-insensitive field names. Map keys match exactly.
func Field(path string) *FieldCondition {
	return &FieldCondition{path: strings.Split(path, ".")}
}

// Equals returns a predicate that is true when the field equals want.
// Numeric values compare by value across numeric types.
func (f *FieldCondition) Equals(want interface{}) dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(got interface{}) bool {
		return looseEqual(got, want)
	})
}

// NotEquals returns a predicate that is true when the field resolves
// and differs from want. A missing field does not match.
func (f *FieldCondition) NotEquals(want interface{}) dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(got interface{}) bool {
		return !looseEqual(got, want)
	})
}

// GreaterThan returns a predicate that is true when the field is
// numerically greater than want.
func (f *FieldCondition) GreaterThan(want interface{}) dispatch.Predicate[map[string]interface{}] {
	return f.numeric(want, func(got, want float64) bool { return got > want })
}

// AtLeast returns a predicate that is true when the field is
// numerically greater than or equal to want.
func (f *FieldCondition) AtLeast(want interface{}) dispatch.Predicate[map[string]interface{}] {
	return f.numeric(want, func(got, want float64) bool { return got >= want })
}

// LessThan returns a predicate that is true when the field is
// numerically less than want.
func (f *FieldCondition) LessThan(want interface{}) dispatch.Predicate[map[string]interface{}] {
	return f.numeric(want, func(got, want float64) bool { return got < want })
}

// AtMost returns a predicate that is true when the field is numerically
// less than or equal to want.
func (f *FieldCondition) AtMost(want interface{}) dispatch.Predicate[map[string]interface{}] {
	return f.numeric(want, func(got, want float64) bool { return got <= want })
}

// Contains returns a predicate that is true when a string field
// contains want as a substring, or when a slice or array field holds an
// element equal to want.
func (f *FieldCondition) Contains(want interface{}) dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(got interface{}) bool {
		gotStr, ok := toString(got)
		if !ok {
			return containsElement(got, want)
		}
		wantStr, ok := toString(want)
		if !ok {
			return false
		}
		return strings.Contains(gotStr, wantStr)
	})
}

// MatchesPattern returns a predicate that is true when the string field
// matches the regular expression pattern. It panics if the pattern does
// not compile, like regexp.MustCompile.
func (f *FieldCondition) MatchesPattern(pattern string) dispatch.Predicate[map[string]interface{}] {
	re := regexp.MustCompile(pattern)
	return f.predicate(func(got interface{}) bool {
		s, ok := toString(got)
		if !ok {
			return false
		}
		return re.MatchString(s)
	})
}

// StartsWith returns a predicate that is true when the string field
// starts with prefix.
func (f *FieldCondition) StartsWith(prefix string) dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(got interface{}) bool {
		s, ok := toString(got)
		if !ok {
			return false
		}
		return strings.HasPrefix(s, prefix)
	})
}

// EndsWith returns a predicate that is true when the string field ends
// with suffix.
func (f *FieldCondition) EndsWith(suffix string) dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(got interface{}) bool {
		s, ok := toString(got)
		if !ok {
			return false
		}
		return strings.HasSuffix(s, suffix)
	})
}

// In returns a predicate that is true when the field equals any of the
// given values.
func (f *FieldCondition) In(values ...interface{}) dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(got interface{}) bool {
		for _, want := range values {
			if looseEqual(got, want) {
				return true
			}
		}
		return false
	})
}

// Exists returns a predicate that is true when the full path resolves,
// whatever the value.
func (f *FieldCondition) Exists() dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(interface{}) bool { return true })
}

// IsTrue returns a predicate that is true when the field is the boolean
// true.
func (f *FieldCondition) IsTrue() dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(got interface{}) bool {
		b, ok := got.(bool)
		return ok && b
	})
}

// IsFalse returns a predicate that is true when the field is the
// boolean false.
func (f *FieldCondition) IsFalse() dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(got interface{}) bool {
		b, ok := got.(bool)
		return ok && !b
	})
}

// predicate wraps a comparison over the resolved field value. A path
// that does not resolve never matches.
func (f *FieldCondition) predicate(cmp func(got interface{}) bool) dispatch.Predicate[map[string]interface{}] {
	return dispatch.PredicateFunc(func(input map[string]interface{}) bool {
		got, ok := f.lookup(input)
		if !ok {
			return false
		}
		return cmp(got)
	})
}

// numeric wraps a float64 comparison. Non-numeric field values or
// bounds never match.
func (f *FieldCondition) numeric(want interface{}, cmp func(got, want float64) bool) dispatch.Predicate[map[string]interface{}] {
	return f.predicate(func(got interface{}) bool {
		gotNum, ok := toFloat64(got)
		if !ok {
			return false
		}
		wantNum, ok := toFloat64(want)
		if !ok {
			return false
		}
		return cmp(gotNum, wantNum)
	})
}

// lookup walks the dotted path through the input. The second return
// reports whether the full path resolved.
func (f *FieldCondition) lookup(input map[string]interface{}) (interface{}, bool) {
	var current interface{} = input
	for _, part := range f.path {
		if m, ok := current.(map[string]interface{}); ok {
			next, ok := m[part]
			if !ok {
				return nil, false
			}
			current = next
			continue
		}

		next, ok := fieldOf(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}

	return current, true
}

// fieldOf resolves one path segment against a struct, a pointer to
// struct, or a string-keyed map.
func fieldOf(obj interface{}, name string) (interface{}, bool) {
	if obj == nil {
		return nil, false
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		keyType := v.Type().Key()
		if keyType.Kind() != reflect.String {
			return nil, false
		}
		elem := v.MapIndex(reflect.ValueOf(name).Convert(keyType))
		if !elem.IsValid() {
			return nil, false
		}
		return elem.Interface(), true

	case reflect.Struct:
		field := v.FieldByNameFunc(func(n string) bool {
			return strings.EqualFold(n, name)
		})
		if !field.IsValid() || !field.CanInterface() {
			return nil, false
		}
		return field.Interface(), true

	default:
		return nil, false
	}
}

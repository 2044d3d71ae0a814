package match

import (
	"fmt"
	"reflect"
)

// toFloat64 converts numeric values to float64 for comparison.
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// toString converts string-like values. Non-string values without a
// String method do not convert.
func toString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}

// looseEqual compares two values. Numerics compare by value across
// types (int 5 equals float64 5); everything else falls back to
// reflect.DeepEqual.
func looseEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	aNum, aOK := toFloat64(a)
	bNum, bOK := toFloat64(b)
	if aOK && bOK {
		return aNum == bNum
	}

	return reflect.DeepEqual(a, b)
}

// containsElement reports whether a slice or array holds an element
// loosely equal to elem.
func containsElement(collection, elem interface{}) bool {
	v := reflect.ValueOf(collection)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return false
	}

	for i := 0; i < v.Len(); i++ {
		if looseEqual(v.Index(i).Interface(), elem) {
			return true
		}
	}

	return false
}

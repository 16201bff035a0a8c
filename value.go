package grove

import (
	"fmt"
	"reflect"
	"strconv"
)

// Value is a scalar observed during matching: a group or dataset name, an
// attribute key or stored value, or a dataset property such as rank. The
// engine never owns a Value; it borrows it from the TreeStore for the
// duration of one predicate call.
type Value = any

// valueEqual compares two values with cross-type numeric tolerance so that a
// reference literal int matches an int64 read from a store, etc. Strings,
// bools and integer slices compare structurally; everything else falls back
// to reflect.DeepEqual.
func valueEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as == bs
		}
		return false
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ab == bb
		}
		return false
	}
	if ai, aok := asInt64(a); aok {
		if bi, bok := asInt64(b); bok {
			return ai == bi
		}
	}
	if af, aok := asFloat64(a); aok {
		if bf, bok := asFloat64(b); bok {
			return af == bf
		}
		return false
	}
	if al, aok := asInt64Slice(a); aok {
		if bl, bok := asInt64Slice(b); bok {
			if len(al) != len(bl) {
				return false
			}
			for i := range al {
				if al[i] != bl[i] {
					return false
				}
			}
			return true
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// valueString renders a value for regex matching and report output.
func valueString(v Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	default:
		if i, ok := asInt64(v); ok {
			return strconv.FormatInt(i, 10)
		}
		return fmt.Sprintf("%v", v)
	}
}

func asInt64(v Value) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	default:
		return 0, false
	}
}

func asFloat64(v Value) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	default:
		if i, ok := asInt64(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}

func asInt64Slice(v Value) ([]int64, bool) {
	switch t := v.(type) {
	case []int64:
		return t, true
	case []int:
		out := make([]int64, len(t))
		for i, e := range t {
			out[i] = int64(e)
		}
		return out, true
	case []any:
		out := make([]int64, len(t))
		for i, e := range t {
			n, ok := asInt64(e)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

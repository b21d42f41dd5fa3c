package series

import (
	"fmt"
	"math"
	"strconv"
)

// Kind classifies the values a Series holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindCategorical
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindCategorical:
		return "categorical"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsNumeric reports whether values of the kind take part in numeric promotion.
func (k Kind) IsNumeric() bool {
	return k == KindBool || k == KindInt || k == KindFloat
}

// IsPrimitive reports whether the kind is stored as an Arrow array.
func (k Kind) IsPrimitive() bool {
	return k != KindObject
}

// KindOf classifies a single Go value. nil is KindNull; anything that is not
// a bool, integer, float or string is KindObject.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	default:
		return KindObject
	}
}

// Supertype returns the narrowest kind both a and b can be represented in.
// Null promotes to anything, bool < int < float, and categorical pairs with
// string as string. With fallback set, any primitive kind paired with a
// string or categorical yields string. Object only unifies with itself.
func Supertype(a, b Kind, fallback bool) (Kind, bool) {
	switch {
	case a == b:
		return a, true
	case a == KindNull:
		return b, true
	case b == KindNull:
		return a, true
	case a == KindObject || b == KindObject:
		return KindObject, false
	case a.IsNumeric() && b.IsNumeric():
		return max(a, b), true
	case isText(a) && isText(b):
		return KindString, true
	case fallback && (isText(a) || isText(b)):
		return KindString, true
	}
	return KindObject, false
}

// CommonKind folds Supertype over kinds. It reports the pair that failed to
// unify when there is no common kind.
func CommonKind(kinds []Kind, fallback bool) (Kind, [2]Kind, bool) {
	acc := KindNull
	for _, k := range kinds {
		next, ok := Supertype(acc, k, fallback)
		if !ok {
			return KindObject, [2]Kind{acc, k}, false
		}
		acc = next
	}
	return acc, [2]Kind{}, true
}

func isText(k Kind) bool {
	return k == KindString || k == KindCategorical
}

// Coerce converts v to the canonical Go representation of kind: bool, int64,
// float64 or string. Objects pass through unchanged.
func Coerce(v any, kind Kind) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case KindNull:
		return nil, fmt.Errorf("cannot store %T in a null column", v)
	case KindObject:
		return v, nil
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindInt:
		if i, ok := toInt64(v); ok {
			return i, nil
		}
		if b, ok := v.(bool); ok {
			return boolToInt(b), nil
		}
	case KindFloat:
		if f, ok := ToFloat64(v); ok {
			return f, nil
		}
	case KindString, KindCategorical:
		if KindOf(v) == KindObject {
			break
		}
		return FormatValue(v), nil
	}
	return nil, fmt.Errorf("cannot convert %T to %s", v, kind)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true //nolint:gosec // values beyond int64 are not expected
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true //nolint:gosec // values beyond int64 are not expected
	}
	return 0, false
}

// ToFloat64 converts any numeric or bool value to float64.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case bool:
		return float64(boolToInt(n)), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// FormatValue renders a value the way it appears in printed tables, pivot
// column names and CSV output. Missing values render as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case shaper:
		r, c := x.Shape()
		return fmt.Sprintf("<table [%d x %d]>", r, c)
	}
	if i, ok := toInt64(v); ok {
		return strconv.FormatInt(i, 10)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// shaper is implemented by nested tables stored in object columns.
type shaper interface {
	Shape() (int, int)
}

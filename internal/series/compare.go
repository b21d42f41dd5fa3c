package series

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paveg/tidyframe/internal/errors"
)

func schemaConflict(name string, a, b Kind) error {
	return errors.NewSchemaUnionConflictError(name, a.String(), b.String())
}

func parseNumber(s string, kind Kind) (any, bool) {
	s = strings.TrimSpace(s)
	if kind == KindInt {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
		return nil, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// Compare orders rows i and j of the column. Both rows must be non-missing.
// Categorical rows compare by level position; booleans order false < true.
// Object rows compare by their printed form.
func (s *Series) Compare(i, j int) int {
	switch s.kind {
	case KindCategorical:
		return cmp.Compare(s.lindex[s.Value(i).(string)], s.lindex[s.Value(j).(string)])
	case KindObject:
		return cmp.Compare(FormatValue(s.objs[i]), FormatValue(s.objs[j]))
	}
	return CompareValues(s.Value(i), s.Value(j))
}

// CompareValues orders two non-missing scalars. Numbers compare numerically
// across int and float; otherwise values compare by printed form.
func CompareValues(a, b any) int {
	if af, ok := ToFloat64(a); ok {
		if bf, ok := ToFloat64(b); ok {
			return cmp.Compare(af, bf)
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

// Key returns a string uniquely identifying row i's value within this
// column, used for grouping and joining. Integral floats share keys with the
// equal integers so int and float key columns join. Missing values share a key.
func (s *Series) Key(i int) string {
	if s.IsNull(i) {
		return "\x00"
	}
	v := s.Value(i)
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return "n" + strconv.FormatInt(int64(x), 10)
		}
		return "n" + strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return "n" + strconv.FormatInt(x, 10)
	case bool:
		return "b" + strconv.FormatBool(x)
	case string:
		return "s" + x
	}
	return "o" + fmt.Sprint(v)
}

// Equal reports whether two columns have the same name, kind and values.
func Equal(a, b *Series) bool {
	if a.name != b.name || a.kind != b.kind || a.length != b.length {
		return false
	}
	for i := 0; i < a.length; i++ {
		if a.IsNull(i) != b.IsNull(i) {
			return false
		}
		if !a.IsNull(i) && a.Key(i) != b.Key(i) {
			if a.kind != KindObject || FormatValue(a.Value(i)) != FormatValue(b.Value(i)) {
				return false
			}
		}
	}
	return true
}

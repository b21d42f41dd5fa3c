// Package series provides the column type shared by tables and expressions.
//
// A Series is immutable. Primitive kinds are stored as Apache Arrow arrays;
// object columns hold one opaque Go value per row (nested tables, fitted
// models, arbitrary row-wise results). Because a Series never changes after
// construction, tables share unmodified columns instead of copying them.
package series

import (
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Series represents a named, typed data column.
type Series struct {
	name   string
	kind   Kind
	length int
	arr    arrow.Array // nil for KindObject
	objs   []any       // KindObject payloads
	levels []string    // KindCategorical level order
	lindex map[string]int
}

var defaultAllocator memory.Allocator = memory.NewGoAllocator()

// Allocator returns the allocator used when callers pass nil.
func Allocator() memory.Allocator {
	return defaultAllocator
}

// New creates a Series from a slice of Go values. Slices of int, int32,
// int64, float32, float64, string and bool become primitive columns; any
// other element type becomes an object column.
func New[T any](name string, values []T, mem memory.Allocator) *Series {
	if mem == nil {
		mem = defaultAllocator
	}

	switch v := any(values).(type) {
	case []int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return fromArray(name, KindInt, b.NewArray())
	case []int:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for _, x := range v {
			b.Append(int64(x))
		}
		return fromArray(name, KindInt, b.NewArray())
	case []int32:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for _, x := range v {
			b.Append(int64(x))
		}
		return fromArray(name, KindInt, b.NewArray())
	case []float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return fromArray(name, KindFloat, b.NewArray())
	case []float32:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for _, x := range v {
			b.Append(float64(x))
		}
		return fromArray(name, KindFloat, b.NewArray())
	case []string:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return fromArray(name, KindString, b.NewArray())
	case []bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return fromArray(name, KindBool, b.NewArray())
	default:
		objs := make([]any, len(values))
		for i, x := range values {
			objs[i] = x
		}
		return NewObject(name, objs)
	}
}

// FromValues creates a Series from boxed values, inferring the narrowest
// kind that holds every non-nil value. Values with no common primitive kind
// produce an object column.
func FromValues(name string, values []any) *Series {
	kinds := make([]Kind, 0, len(values))
	for _, v := range values {
		kinds = append(kinds, KindOf(v))
	}
	kind, _, ok := CommonKind(kinds, false)
	if !ok {
		return NewObject(name, values)
	}
	s, err := Build(name, kind, values)
	if err != nil {
		return NewObject(name, values)
	}
	return s
}

// Build creates a Series of the given kind, coercing every value. Missing
// values are nil.
func Build(name string, kind Kind, values []any) (*Series, error) {
	switch kind {
	case KindNull:
		for i, v := range values {
			if v != nil {
				return nil, fmt.Errorf("building %s: non-missing value at row %d in null column", name, i)
			}
		}
		return NewNull(name, len(values)), nil
	case KindObject:
		return NewObject(name, values), nil
	case KindCategorical:
		return NewCategorical(name, values, nil)
	}

	b := array.NewBuilder(defaultAllocator, arrowType(kind))
	defer b.Release()
	b.Reserve(len(values))
	for i, v := range values {
		c, err := Coerce(v, kind)
		if err != nil {
			return nil, fmt.Errorf("building %s at row %d: %w", name, i, err)
		}
		appendValue(b, c)
	}
	return fromArray(name, kind, b.NewArray()), nil
}

// NewNull creates an all-missing column of length n.
func NewNull(name string, n int) *Series {
	return fromArray(name, KindNull, array.NewNull(n))
}

// NewObject creates an object column. nil entries are missing values.
func NewObject(name string, values []any) *Series {
	return &Series{name: name, kind: KindObject, length: len(values), objs: slices.Clone(values)}
}

// NewCategorical creates a categorical column. When levels is nil the levels
// are the distinct values in first-seen order; otherwise every value must be
// one of the given levels.
func NewCategorical(name string, values []any, levels []string) (*Series, error) {
	strs := make([]any, len(values))
	for i, v := range values {
		c, err := Coerce(v, KindCategorical)
		if err != nil {
			return nil, fmt.Errorf("building %s at row %d: %w", name, i, err)
		}
		strs[i] = c
	}

	if levels == nil {
		seen := make(map[string]bool)
		for _, v := range strs {
			if v == nil {
				continue
			}
			if s := v.(string); !seen[s] {
				seen[s] = true
				levels = append(levels, s)
			}
		}
	}
	index := levelIndex(levels)
	for i, v := range strs {
		if v == nil {
			continue
		}
		if _, ok := index[v.(string)]; !ok {
			return nil, fmt.Errorf("building %s at row %d: %q is not a level", name, i, v)
		}
	}

	b := array.NewStringBuilder(defaultAllocator)
	defer b.Release()
	for _, v := range strs {
		appendValue(b, v)
	}
	s := fromArray(name, KindCategorical, b.NewArray())
	s.levels = slices.Clone(levels)
	s.lindex = index
	return s, nil
}

func levelIndex(levels []string) map[string]int {
	index := make(map[string]int, len(levels))
	for i, l := range levels {
		if _, ok := index[l]; !ok {
			index[l] = i
		}
	}
	return index
}

func fromArray(name string, kind Kind, arr arrow.Array) *Series {
	return &Series{name: name, kind: kind, length: arr.Len(), arr: arr}
}

func arrowType(kind Kind) arrow.DataType {
	switch kind {
	case KindBool:
		return arrow.FixedWidthTypes.Boolean
	case KindInt:
		return arrow.PrimitiveTypes.Int64
	case KindFloat:
		return arrow.PrimitiveTypes.Float64
	case KindString, KindCategorical:
		return arrow.BinaryTypes.String
	default:
		return arrow.Null
	}
}

func appendValue(b array.Builder, v any) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch tb := b.(type) {
	case *array.BooleanBuilder:
		tb.Append(v.(bool))
	case *array.Int64Builder:
		tb.Append(v.(int64))
	case *array.Float64Builder:
		tb.Append(v.(float64))
	case *array.StringBuilder:
		tb.Append(v.(string))
	}
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// Len returns the number of rows.
func (s *Series) Len() int { return s.length }

// Kind returns the value kind.
func (s *Series) Kind() Kind { return s.kind }

// Levels returns the categorical level order, or nil for other kinds.
func (s *Series) Levels() []string { return slices.Clone(s.levels) }

// Array returns the backing Arrow array. Object columns return nil.
func (s *Series) Array() arrow.Array { return s.arr }

// DataType returns the Arrow type of the column as it is stored.
func (s *Series) DataType() arrow.DataType {
	if s.kind == KindObject {
		return nil
	}
	return s.arr.DataType()
}

// Rename returns a Series sharing the same data under a new name.
func (s *Series) Rename(name string) *Series {
	c := *s
	c.name = name
	return &c
}

// IsNull reports whether row i is missing.
func (s *Series) IsNull(i int) bool {
	if s.kind == KindObject {
		return s.objs[i] == nil
	}
	return s.arr.IsNull(i)
}

// NullCount returns the number of missing rows.
func (s *Series) NullCount() int {
	if s.kind != KindObject {
		return s.arr.NullN()
	}
	n := 0
	for _, v := range s.objs {
		if v == nil {
			n++
		}
	}
	return n
}

// Value returns row i as bool, int64, float64, string or the object payload.
// Missing values are nil.
func (s *Series) Value(i int) any {
	if s.kind == KindObject {
		return s.objs[i]
	}
	if s.arr.IsNull(i) {
		return nil
	}
	switch a := s.arr.(type) {
	case *array.Boolean:
		return a.Value(i)
	case *array.Int64:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	}
	return nil
}

// Values returns all rows boxed.
func (s *Series) Values() []any {
	out := make([]any, s.length)
	for i := range out {
		out[i] = s.Value(i)
	}
	return out
}

// Take gathers rows by position. An index of -1 produces a missing value.
func (s *Series) Take(indices []int) *Series {
	values := make([]any, len(indices))
	for i, idx := range indices {
		if idx >= 0 {
			values[i] = s.Value(idx)
		}
	}
	return s.withValues(values)
}

// Repeat returns a column of length n holding row i in every position.
func (s *Series) Repeat(i, n int) *Series {
	indices := make([]int, n)
	for k := range indices {
		indices[k] = i
	}
	return s.Take(indices)
}

// withValues rebuilds a Series of the same name, kind and levels.
func (s *Series) withValues(values []any) *Series {
	switch s.kind {
	case KindObject:
		return NewObject(s.name, values)
	case KindNull:
		return NewNull(s.name, len(values))
	case KindCategorical:
		out, err := NewCategorical(s.name, values, s.levels)
		if err != nil {
			panic(fmt.Sprintf("series: rebuilding categorical %s: %v", s.name, err))
		}
		return out
	}
	out, err := Build(s.name, s.kind, values)
	if err != nil {
		panic(fmt.Sprintf("series: rebuilding %s: %v", s.name, err))
	}
	return out
}

// Cast converts the column to another kind.
func (s *Series) Cast(kind Kind) (*Series, error) {
	if kind == s.kind {
		return s, nil
	}
	if kind == KindCategorical {
		return NewCategorical(s.name, s.Values(), nil)
	}
	values := s.Values()
	if kind == KindBool && s.kind != KindBool {
		for i, v := range values {
			if v == nil {
				continue
			}
			switch x := v.(type) {
			case string:
				values[i] = x == "true" || x == "TRUE" || x == "True"
			default:
				f, ok := ToFloat64(v)
				if !ok {
					return nil, fmt.Errorf("cannot cast %T to bool", v)
				}
				values[i] = f != 0
			}
		}
	}
	if s.kind == KindFloat && kind == KindInt {
		for i, v := range values {
			if f, ok := v.(float64); ok {
				values[i] = int64(f)
			}
		}
	}
	if isText(s.kind) && (kind == KindInt || kind == KindFloat) {
		for i, v := range values {
			if v == nil {
				continue
			}
			parsed, ok := parseNumber(v.(string), kind)
			if !ok {
				values[i] = nil
				continue
			}
			values[i] = parsed
		}
	}
	return Build(s.name, kind, values)
}

// Concat appends parts end to end under the given name, promoting kinds to
// their supertype. Categorical parts merge their levels in first-seen order.
// Kinds without a supertype are reported as a *errors.SchemaUnionConflictError.
func Concat(name string, fallback bool, parts ...*Series) (*Series, error) {
	kinds := make([]Kind, len(parts))
	for i, p := range parts {
		kinds[i] = p.kind
	}
	kind, pair, ok := CommonKind(kinds, fallback)
	if !ok {
		return nil, schemaConflict(name, pair[0], pair[1])
	}

	var values []any
	var levels []string
	seen := make(map[string]bool)
	for _, p := range parts {
		values = append(values, p.Values()...)
		for _, l := range p.levels {
			if !seen[l] {
				seen[l] = true
				levels = append(levels, l)
			}
		}
	}
	if kind == KindCategorical {
		return NewCategorical(name, values, levels)
	}
	return Build(name, kind, values)
}

// String returns a short description of the column.
func (s *Series) String() string {
	return fmt.Sprintf("Series(%s: %s, len=%d)", s.name, s.kind, s.length)
}

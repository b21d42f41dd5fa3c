package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe/internal/errors"
)

var categoricalType = &arrow.DictionaryType{
	IndexType: arrow.PrimitiveTypes.Int32,
	ValueType: arrow.BinaryTypes.String,
}

// ArrowField returns the schema field describing the column.
func (s *Series) ArrowField() (arrow.Field, error) {
	switch s.kind {
	case KindObject:
		return arrow.Field{}, &errors.DataFrameError{
			Op: "to_arrow", Column: s.name, Message: "object column", Cause: errors.ErrObjectColumnNotSupported,
		}
	case KindCategorical:
		return arrow.Field{Name: s.name, Type: categoricalType, Nullable: true}, nil
	}
	return arrow.Field{Name: s.name, Type: s.arr.DataType(), Nullable: true}, nil
}

// ToArrow returns an Arrow array for export. Categorical columns become
// dictionary arrays whose dictionary lists the levels in order. The caller
// owns the returned reference.
func (s *Series) ToArrow(mem memory.Allocator) (arrow.Array, error) {
	if mem == nil {
		mem = defaultAllocator
	}
	switch s.kind {
	case KindObject:
		_, err := s.ArrowField()
		return nil, err
	case KindCategorical:
		dictBuilder := array.NewStringBuilder(mem)
		defer dictBuilder.Release()
		dictBuilder.AppendValues(s.levels, nil)
		dict := dictBuilder.NewArray()
		defer dict.Release()

		idxBuilder := array.NewInt32Builder(mem)
		defer idxBuilder.Release()
		for i := 0; i < s.length; i++ {
			if s.IsNull(i) {
				idxBuilder.AppendNull()
				continue
			}
			idxBuilder.Append(int32(s.lindex[s.Value(i).(string)])) //nolint:gosec // level counts fit in int32
		}
		indices := idxBuilder.NewArray()
		defer indices.Release()
		return array.NewDictionaryArray(categoricalType, indices, dict), nil
	}
	s.arr.Retain()
	return s.arr, nil
}

// FromArrow converts an Arrow array into a Series. Integer types widen to
// int64, floating types to float64, string-valued dictionaries become
// categorical columns.
func FromArrow(name string, arr arrow.Array) (*Series, error) {
	values := make([]any, arr.Len())
	switch a := arr.(type) {
	case *array.Null:
		return NewNull(name, a.Len()), nil
	case *array.Boolean:
		return collect(name, KindBool, a, values, func(i int) any { return a.Value(i) })
	case *array.Int8:
		return collect(name, KindInt, a, values, func(i int) any { return int64(a.Value(i)) })
	case *array.Int16:
		return collect(name, KindInt, a, values, func(i int) any { return int64(a.Value(i)) })
	case *array.Int32:
		return collect(name, KindInt, a, values, func(i int) any { return int64(a.Value(i)) })
	case *array.Int64:
		return collect(name, KindInt, a, values, func(i int) any { return a.Value(i) })
	case *array.Uint8:
		return collect(name, KindInt, a, values, func(i int) any { return int64(a.Value(i)) })
	case *array.Uint16:
		return collect(name, KindInt, a, values, func(i int) any { return int64(a.Value(i)) })
	case *array.Uint32:
		return collect(name, KindInt, a, values, func(i int) any { return int64(a.Value(i)) })
	case *array.Float32:
		return collect(name, KindFloat, a, values, func(i int) any { return float64(a.Value(i)) })
	case *array.Float64:
		return collect(name, KindFloat, a, values, func(i int) any { return a.Value(i) })
	case *array.String:
		return collect(name, KindString, a, values, func(i int) any { return a.Value(i) })
	case *array.LargeString:
		return collect(name, KindString, a, values, func(i int) any { return a.Value(i) })
	case *array.Dictionary:
		dict, ok := a.Dictionary().(*array.String)
		if !ok {
			return nil, fmt.Errorf("column %s: unsupported dictionary value type %s", name, a.Dictionary().DataType())
		}
		levels := make([]string, dict.Len())
		for i := range levels {
			levels[i] = dict.Value(i)
		}
		for i := range values {
			if !a.IsNull(i) {
				values[i] = levels[a.GetValueIndex(i)]
			}
		}
		return NewCategorical(name, values, levels)
	}
	return nil, fmt.Errorf("column %s: unsupported Arrow type %s", name, arr.DataType())
}

func collect(name string, kind Kind, arr arrow.Array, values []any, get func(int) any) (*Series, error) {
	for i := range values {
		if !arr.IsNull(i) {
			values[i] = get(i)
		}
	}
	return Build(name, kind, values)
}

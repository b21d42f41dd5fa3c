package expr

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/common"
	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/logging"
	"github.com/paveg/tidyframe/internal/parallel"
	"github.com/paveg/tidyframe/internal/series"
)

// Row is the positional tuple of column values handed to a row-wise
// function. Missing values are nil.
type Row []any

// MapFunc computes one output value from one row.
type MapFunc func(Row) (any, error)

// MapOptions controls how a row-wise function is executed.
type MapOptions struct {
	Parallel  bool // use the worker pool
	Workers   int  // pool size, 0 uses the configured size
	Threshold int  // minimum rows before the pool is used, 0 uses the configured threshold
}

// MapExpr applies a Go function to every row of the named columns.
type MapExpr struct {
	columns []string
	fn      MapFunc
	opts    *MapOptions
}

func (m *MapExpr) Type() ExprType { return ExprMap }

func (m *MapExpr) String() string {
	return common.FormatFunction("map", common.FormatStrings(m.columns)...)
}

// Columns returns the input column names in tuple order.
func (m *MapExpr) Columns() []string { return append([]string(nil), m.columns...) }

// Map creates a row-wise function expression over the named columns.
func Map(columns []string, fn MapFunc) *MapExpr {
	return &MapExpr{columns: append([]string(nil), columns...), fn: fn}
}

// WithOptions returns a copy of the expression with execution options set.
func (m *MapExpr) WithOptions(opts MapOptions) *MapExpr {
	return &MapExpr{columns: m.columns, fn: m.fn, opts: &opts}
}

// Fn1 adapts a typed single-argument function to a MapFunc. Rows whose
// input is missing produce a missing result without calling fn.
func Fn1[A, R any](fn func(A) R) MapFunc {
	return func(row Row) (any, error) {
		if err := arity(row, 1); err != nil || hasMissing(row) {
			return nil, err
		}
		a, err := convertArg[A](row, 0)
		if err != nil {
			return nil, err
		}
		return fn(a), nil
	}
}

// Fn2 adapts a typed two-argument function to a MapFunc.
func Fn2[A, B, R any](fn func(A, B) R) MapFunc {
	return func(row Row) (any, error) {
		if err := arity(row, 2); err != nil || hasMissing(row) {
			return nil, err
		}
		a, err := convertArg[A](row, 0)
		if err != nil {
			return nil, err
		}
		b, err := convertArg[B](row, 1)
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

// Fn3 adapts a typed three-argument function to a MapFunc.
func Fn3[A, B, C, R any](fn func(A, B, C) R) MapFunc {
	return func(row Row) (any, error) {
		if err := arity(row, 3); err != nil || hasMissing(row) {
			return nil, err
		}
		a, err := convertArg[A](row, 0)
		if err != nil {
			return nil, err
		}
		b, err := convertArg[B](row, 1)
		if err != nil {
			return nil, err
		}
		c, err := convertArg[C](row, 2)
		if err != nil {
			return nil, err
		}
		return fn(a, b, c), nil
	}
}

func arity(row Row, want int) error {
	if len(row) != want {
		return fmt.Errorf("function takes %d arguments, row has %d values", want, len(row))
	}
	return nil
}

func hasMissing(row Row) bool {
	for _, v := range row {
		if v == nil {
			return true
		}
	}
	return false
}

// convertArg converts row[i] to A. Stored integers and floats are int64 and
// float64; they convert to the narrower Go numeric types on request.
func convertArg[A any](row Row, i int) (A, error) {
	var zero A
	v := row[i]
	if a, ok := v.(A); ok {
		return a, nil
	}
	var out any
	switch any(zero).(type) {
	case int:
		if n, ok := v.(int64); ok {
			out = int(n)
		}
	case int32:
		if n, ok := v.(int64); ok {
			out = int32(n) //nolint:gosec // caller chose the narrower type
		}
	case float64:
		if f, ok := series.ToFloat64(v); ok {
			out = f
		}
	case float32:
		if f, ok := series.ToFloat64(v); ok {
			out = float32(f)
		}
	}
	if a, ok := out.(A); ok {
		return a, nil
	}
	return zero, fmt.Errorf("argument %d: cannot use %T as %T", i+1, v, zero)
}

type rowResult struct {
	value any
	err   error
}

func (e *Evaluator) evalMap(m *MapExpr, frame Frame) (*series.Series, error) {
	cols := make([]*series.Series, len(m.columns))
	for i, name := range m.columns {
		col, ok := frame.Column(name)
		if !ok {
			return nil, errors.NewUnknownColumnError("map", name, frame.ColumnNames())
		}
		cols[i] = col
	}

	n := frame.Len()
	apply := func(i int) rowResult {
		row := make(Row, len(cols))
		for j, c := range cols {
			row[j] = c.Value(i)
		}
		return callRow(m.fn, row)
	}

	var results []rowResult
	if workers, ok := m.parallelism(n); ok {
		logging.Logger().Debug("running row-wise function on worker pool", "rows", n, "workers", workers)
		pool := parallel.NewWorkerPool(workers)
		results = parallel.ProcessIndexed(pool, n, apply)
		pool.Close()
	} else {
		results = make([]rowResult, n)
		for i := range results {
			results[i] = apply(i)
		}
	}

	values := make([]any, n)
	for i, r := range results {
		if r.err != nil {
			return nil, errors.NewRowApplyError(i, r.err)
		}
		values[i] = r.value
	}
	return narrow(values)
}

// parallelism reports whether the worker pool should be used for n rows,
// and with how many workers.
func (m *MapExpr) parallelism(n int) (int, bool) {
	cfg := config.GetGlobalConfig()
	enabled, workers, threshold := cfg.ParallelMap, cfg.WorkerPoolSize, cfg.ParallelThreshold
	if m.opts != nil {
		enabled = enabled || m.opts.Parallel
		if m.opts.Workers > 0 {
			workers = m.opts.Workers
		}
		if m.opts.Threshold > 0 {
			threshold = m.opts.Threshold
		}
	}
	return workers, enabled && n >= threshold
}

func callRow(fn MapFunc, row Row) (res rowResult) {
	defer func() {
		if r := recover(); r != nil {
			res = rowResult{err: fmt.Errorf("panic: %v", r)}
		}
	}()
	v, err := fn(row)
	return rowResult{value: v, err: err}
}

// narrow builds the result column. It is primitive only when every
// non-missing value has the same primitive kind; anything else is an object
// column.
func narrow(values []any) (*series.Series, error) {
	kind := series.KindNull
	for _, v := range values {
		k := series.KindOf(v)
		switch {
		case k == series.KindNull:
		case kind == series.KindNull:
			kind = k
		case k != kind:
			return series.NewObject("", values), nil
		}
	}
	switch kind {
	case series.KindNull:
		return series.NewNull("", len(values)), nil
	case series.KindObject:
		return series.NewObject("", values), nil
	}
	return series.Build("", kind, values)
}

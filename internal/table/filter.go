package table

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/validation"
)

// Filter keeps the rows for which every predicate is true. Missing
// predicate values count as false. Row order is preserved.
func (t *Table) Filter(preds ...expr.Expr) (*Table, error) {
	mask, err := filterMask(t, preds)
	if err != nil {
		return nil, err
	}
	return t.take(maskRows(mask, allRows(t.nrows))), nil
}

// filterMask evaluates the conjunction of preds over frame. mask[i] is true
// when row i of the frame passes.
func filterMask(frame expr.Frame, preds []expr.Expr) ([]bool, error) {
	ev := expr.NewEvaluator(nil)
	mask := make([]bool, frame.Len())
	for i := range mask {
		mask[i] = true
	}
	for i, p := range preds {
		s, err := ev.EvaluateN(p, frame)
		if err != nil {
			return nil, fmt.Errorf("filter predicate %d: %w", i+1, err)
		}
		if err := validation.ValidateKind(s, "filter", series.KindBool, series.KindNull); err != nil {
			return nil, fmt.Errorf("filter predicate %s must be boolean: %w", p, err)
		}
		for row := range mask {
			if b, ok := s.Value(row).(bool); !ok || !b {
				mask[row] = false
			}
		}
	}
	return mask, nil
}

func maskRows(mask []bool, rows []int) []int {
	out := make([]int, 0, len(rows))
	for i, keep := range mask {
		if keep {
			out = append(out, rows[i])
		}
	}
	return out
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// Slice keeps the rows at the given indices, in the given order.
func (t *Table) Slice(indices ...int) (*Table, error) {
	for _, i := range indices {
		if err := validation.ValidateIndex(i, t.nrows, "slice"); err != nil {
			return nil, err
		}
	}
	return t.take(indices), nil
}

// Head keeps the first n rows.
func (t *Table) Head(n int) *Table {
	n = max(0, min(n, t.nrows))
	return t.take(allRows(n))
}

// Tail keeps the last n rows.
func (t *Table) Tail(n int) *Table {
	n = max(0, min(n, t.nrows))
	rows := make([]int, n)
	for i := range rows {
		rows[i] = t.nrows - n + i
	}
	return t.take(rows)
}

// Distinct keeps the first row of each distinct combination of the named
// columns. With no names every column is compared; with names only those
// columns are kept.
func (t *Table) Distinct(names ...string) (*Table, error) {
	source := t
	if len(names) > 0 {
		cols, err := t.columnsOf("distinct", names)
		if err != nil {
			return nil, err
		}
		source = build(t.nrows, cols)
	}
	groups := groupRows(source.columns, source.nrows)
	firsts := make([]int, len(groups))
	for i, g := range groups {
		firsts[i] = g[0]
	}
	return source.take(firsts), nil
}

// DropNull removes rows with a missing value in any of the named columns,
// or in any column when no names are given.
func (t *Table) DropNull(names ...string) (*Table, error) {
	cols := t.columns
	if len(names) > 0 {
		var err error
		if cols, err = t.columnsOf("drop_null", names); err != nil {
			return nil, err
		}
	}
	rows := make([]int, 0, t.nrows)
next:
	for i := 0; i < t.nrows; i++ {
		for _, c := range cols {
			if c.IsNull(i) {
				continue next
			}
		}
		rows = append(rows, i)
	}
	return t.take(rows), nil
}

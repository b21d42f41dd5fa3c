package table

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/validation"
)

// Summarise reduces the table to a single row. Every argument must
// evaluate to a single value.
func (t *Table) Summarise(args ...expr.Arg) (*Table, error) {
	return summarise(t, nil, [][]int{allRows(t.nrows)}, args)
}

// summarise emits one row per group: the key columns taken from each
// group's first row, followed by one column per assignment.
func summarise(t *Table, keys []*series.Series, groups [][]int, args []expr.Arg) (*Table, error) {
	firsts := make([]int, len(groups))
	for g, rows := range groups {
		if len(rows) > 0 {
			firsts[g] = rows[0]
		}
	}
	out := make([]*series.Series, 0, len(keys)+len(args))
	for _, k := range keys {
		out = append(out, k.Take(firsts))
	}

	ev := expr.NewEvaluator(nil)
	for _, arg := range args {
		assignments, err := arg.Expand(t)
		if err != nil {
			return nil, fmt.Errorf("summarise: %w", err)
		}
		for _, a := range assignments {
			col, err := summariseOne(ev, t, groups, a)
			if err != nil {
				return nil, err
			}
			out = append(out, col)
		}
	}

	names := make([]string, len(out))
	for i, c := range out {
		names[i] = c.Name()
	}
	if err := validation.ValidateUniqueNames("summarise", names...); err != nil {
		return nil, err
	}
	return build(len(groups), out), nil
}

func summariseOne(ev *expr.Evaluator, t *Table, groups [][]int, a expr.Assignment) (*series.Series, error) {
	if len(groups) == 0 {
		// Evaluate against the empty table to learn the result kind.
		col, err := ev.Evaluate(a.Expr, t)
		if err != nil {
			return nil, fmt.Errorf("summarise %s: %w", a.Name, err)
		}
		return col.Take(nil).Rename(a.Name), nil
	}

	parts := make([]*series.Series, len(groups))
	for g, rows := range groups {
		var frame expr.Frame = t
		if len(rows) != t.nrows {
			frame = newRowsFrame(t, rows)
		}
		col, err := ev.Evaluate(a.Expr, frame)
		if err != nil {
			return nil, fmt.Errorf("summarise %s: %w", a.Name, err)
		}
		if col.Len() != 1 {
			return nil, &errors.DataFrameError{
				Op:      "summarise",
				Column:  a.Name,
				Message: fmt.Sprintf("%s produced %d values", a.Expr, col.Len()),
				Cause:   errors.ErrNotScalarAggregation,
			}
		}
		parts[g] = col
	}
	col, err := series.Concat(a.Name, false, parts...)
	if err != nil {
		return nil, fmt.Errorf("summarise %s: %w", a.Name, err)
	}
	return col, nil
}

// Count returns one row per distinct combination of the named columns, in
// first-seen order, with the number of rows in a column called n.
func (t *Table) Count(names ...string) (*Table, error) {
	if len(names) == 0 {
		return t.Summarise(expr.Alias(expr.N(), "n"))
	}
	g, err := t.GroupBy(names...)
	if err != nil {
		return nil, err
	}
	return g.Summarise(expr.Alias(expr.N(), "n"))
}

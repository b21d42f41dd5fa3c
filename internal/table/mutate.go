package table

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
)

// Mutate adds or replaces columns. Arguments are applied in order and each
// one sees the columns produced by the previous ones. Single-value results
// such as aggregates are broadcast to every row.
func (t *Table) Mutate(args ...expr.Arg) (*Table, error) {
	return mutate(t, [][]int{allRows(t.nrows)}, args)
}

// mutate applies assignments group by group. groups must cover every row.
func mutate(t *Table, groups [][]int, args []expr.Arg) (*Table, error) {
	ev := expr.NewEvaluator(nil)
	current := t
	for _, arg := range args {
		assignments, err := arg.Expand(current)
		if err != nil {
			return nil, fmt.Errorf("mutate: %w", err)
		}
		for _, a := range assignments {
			col, err := evaluateGrouped(ev, current, groups, a.Expr, a.Name)
			if err != nil {
				return nil, fmt.Errorf("mutate %s: %w", a.Name, err)
			}
			current = current.withColumn(col)
		}
	}
	return current, nil
}

// evaluateGrouped evaluates e within each group, broadcasting per group,
// and reassembles the results in row order.
func evaluateGrouped(ev *expr.Evaluator, t *Table, groups [][]int, e expr.Expr, name string) (*series.Series, error) {
	if len(groups) == 1 && len(groups[0]) == t.nrows {
		col, err := ev.EvaluateN(e, t)
		if err != nil {
			return nil, err
		}
		return col.Rename(name), nil
	}
	parts := make([]*series.Series, len(groups))
	for g, rows := range groups {
		col, err := ev.EvaluateN(e, newRowsFrame(t, rows))
		if err != nil {
			return nil, err
		}
		parts[g] = col
	}
	return scatter(name, t.nrows, groups, parts)
}

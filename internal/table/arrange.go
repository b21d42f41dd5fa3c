package table

import (
	"fmt"
	"slices"

	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
)

type sortKey struct {
	col  *series.Series
	desc bool
}

// Arrange sorts rows by the keys, first key most significant. The sort is
// stable. Desc reverses a single key. Missing values sort last whatever the
// direction, and categorical keys sort by level order.
func (t *Table) Arrange(keys ...expr.Expr) (*Table, error) {
	if len(keys) == 0 {
		return t, nil
	}
	ev := expr.NewEvaluator(nil)
	sortKeys := make([]sortKey, len(keys))
	for i, k := range keys {
		e, desc := expr.SortKey(k)
		col, err := ev.EvaluateN(e, t)
		if err != nil {
			return nil, fmt.Errorf("arrange key %d: %w", i+1, err)
		}
		sortKeys[i] = sortKey{col: col, desc: desc}
	}

	rows := allRows(t.nrows)
	slices.SortStableFunc(rows, func(a, b int) int {
		for _, k := range sortKeys {
			an, bn := k.col.IsNull(a), k.col.IsNull(b)
			switch {
			case an && bn:
				continue
			case an:
				return 1
			case bn:
				return -1
			}
			c := k.col.Compare(a, b)
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return t.take(rows), nil
}

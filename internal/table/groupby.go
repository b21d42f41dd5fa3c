package table

import (
	"fmt"
	"strings"

	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
)

// GroupedTable is a table partitioned by the distinct values of its key
// columns. Groups are ordered by first appearance.
type GroupedTable struct {
	table  *Table
	keys   []string
	groups [][]int
}

// GroupBy partitions the table by the named columns.
func (t *Table) GroupBy(keys ...string) (*GroupedTable, error) {
	cols, err := t.columnsOf("group_by", keys)
	if err != nil {
		return nil, err
	}
	var groups [][]int
	if t.nrows > 0 {
		groups = groupRows(cols, t.nrows)
	}
	return &GroupedTable{table: t, keys: keys, groups: groups}, nil
}

// Keys returns the grouping column names.
func (g *GroupedTable) Keys() []string { return append([]string(nil), g.keys...) }

// NGroups returns the number of groups.
func (g *GroupedTable) NGroups() int { return len(g.groups) }

// Groups returns the row indices of each group.
func (g *GroupedTable) Groups() [][]int {
	out := make([][]int, len(g.groups))
	for i, rows := range g.groups {
		out[i] = append([]int(nil), rows...)
	}
	return out
}

// Ungroup returns the underlying table.
func (g *GroupedTable) Ungroup() *Table { return g.table }

func (g *GroupedTable) keyColumns() []*series.Series {
	cols, _ := g.table.columnsOf("group_by", g.keys)
	return cols
}

// Summarise emits one row per group, key columns first, in first-seen
// group order.
func (g *GroupedTable) Summarise(args ...expr.Arg) (*Table, error) {
	return summarise(g.table, g.keyColumns(), g.groups, args)
}

// Mutate evaluates the arguments within each group, so aggregates
// broadcast per group. The grouping is kept.
func (g *GroupedTable) Mutate(args ...expr.Arg) (*GroupedTable, error) {
	t, err := mutate(g.table, g.evalGroups(), args)
	if err != nil {
		return nil, err
	}
	return t.GroupBy(g.keys...)
}

// Filter evaluates predicates within each group, so aggregates compare
// against per-group values. Row order is preserved.
func (g *GroupedTable) Filter(preds ...expr.Expr) (*GroupedTable, error) {
	keep := make([]bool, g.table.nrows)
	for _, rows := range g.evalGroups() {
		mask, err := filterMask(newRowsFrame(g.table, rows), preds)
		if err != nil {
			return nil, err
		}
		for i, ok := range mask {
			keep[rows[i]] = ok
		}
	}
	return g.table.take(maskRows(keep, allRows(g.table.nrows))).GroupBy(g.keys...)
}

// evalGroups returns the groups row-wise verbs evaluate over. A table
// without rows still gets one empty group so expressions are checked
// against its schema.
func (g *GroupedTable) evalGroups() [][]int {
	if len(g.groups) == 0 {
		return [][]int{allRows(0)}
	}
	return g.groups
}

// String renders the grouping followed by the table.
func (g *GroupedTable) String() string {
	return fmt.Sprintf("# Groups: %s [%d]\n%s", strings.Join(g.keys, ", "), len(g.groups), g.table.String())
}

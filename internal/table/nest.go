package table

import (
	"fmt"
	"slices"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// Nest collapses the table to one row per distinct key tuple, in
// first-seen order. The remaining columns of each group become a nested
// table stored in the into column; an empty name uses the configured
// default.
func (t *Table) Nest(keys []string, into string) (*Table, error) {
	if into == "" {
		into = config.GetGlobalConfig().NestColumn
	}
	keyCols, err := t.columnsOf("nest", keys)
	if err != nil {
		return nil, err
	}
	if slices.Contains(keys, into) {
		return nil, errors.NewColumnNameCollisionError("nest", into)
	}

	var groups [][]int
	if t.nrows > 0 {
		groups = groupRows(keyCols, t.nrows)
	}
	inner := t.without(keys...)
	firsts := make([]int, len(groups))
	nested := make([]any, len(groups))
	for g, rows := range groups {
		firsts[g] = rows[0]
		nested[g] = inner.take(rows)
	}

	out := make([]*series.Series, 0, len(keys)+1)
	for _, k := range keyCols {
		out = append(out, k.Take(firsts))
	}
	out = append(out, series.NewObject(into, nested))
	result := build(len(groups), out)
	result.nested = map[string]*Table{into: inner.take(nil)}
	return result, nil
}

// Unnest expands a column of nested tables back into rows. Each outer row
// is repeated once per row of its nested table; a missing cell yields no
// rows. Nested schemas are unioned in first-seen column order and columns a
// nested table lacks are padded with missing values. When no cell holds a
// table, the schema recorded by Nest is used if the column came from Nest.
func (t *Table) Unnest(column string) (*Table, error) {
	col, err := t.Pull(column)
	if err != nil {
		return nil, fmt.Errorf("unnest: %w", err)
	}

	var (
		outerRows []int
		inners    []*Table
	)
	for i := 0; i < t.nrows; i++ {
		v := col.Value(i)
		if v == nil {
			continue
		}
		inner, ok := v.(*Table)
		if !ok {
			return nil, &errors.DataFrameError{
				Op:      "unnest",
				Column:  column,
				Message: fmt.Sprintf("row %d holds %T", i, v),
				Cause:   errors.ErrNotNestedTable,
			}
		}
		inners = append(inners, inner)
		for range inner.nrows {
			outerRows = append(outerRows, i)
		}
	}

	if len(inners) == 0 {
		if proto, ok := t.nested[column]; ok {
			inners = []*Table{proto}
		}
	}
	innerCols, err := unionColumns(inners)
	if err != nil {
		return nil, fmt.Errorf("unnest: %w", err)
	}
	for _, c := range innerCols {
		if c.Name() != column && t.HasColumn(c.Name()) {
			return nil, errors.NewColumnNameCollisionError("unnest", c.Name())
		}
	}

	out := make([]*series.Series, 0, t.Width()-1+len(innerCols))
	for _, c := range t.columns {
		if c.Name() == column {
			out = append(out, innerCols...)
			continue
		}
		out = append(out, c.Take(outerRows))
	}
	return build(len(outerRows), out), nil
}

// unionColumns stacks tables vertically. Columns appear in first-seen
// order; a table lacking a column contributes missing values. Kinds are
// combined by supertype without string fallback.
func unionColumns(tables []*Table) ([]*series.Series, error) {
	var names []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, name := range t.ColumnNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	out := make([]*series.Series, len(names))
	for i, name := range names {
		parts := make([]*series.Series, len(tables))
		for j, t := range tables {
			if c, ok := t.Column(name); ok {
				parts[j] = c
			} else {
				parts[j] = series.NewNull(name, t.nrows)
			}
		}
		col, err := series.Concat(name, false, parts...)
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}

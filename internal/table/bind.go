package table

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/validation"
)

// BindRows stacks tables vertically. Columns are matched by name and
// appear in first-seen order; columns missing from a table are filled with
// missing values. Kinds combine by supertype; incompatible kinds are a
// SchemaUnionConflictError.
func (t *Table) BindRows(others ...*Table) (*Table, error) {
	tables := append([]*Table{t}, others...)
	cols, err := unionColumns(tables)
	if err != nil {
		return nil, fmt.Errorf("bind_rows: %w", err)
	}
	n := 0
	for _, tbl := range tables {
		n += tbl.nrows
	}
	return build(n, cols), nil
}

// BindCols places tables side by side. All tables must have the same
// number of rows and column names must stay unique.
func (t *Table) BindCols(others ...*Table) (*Table, error) {
	cols := t.Columns()
	for i, o := range others {
		if err := validation.ValidateLength(t.nrows, o.nrows, "bind_cols", fmt.Sprintf("table %d", i+2)); err != nil {
			return nil, err
		}
		cols = append(cols, o.columns...)
	}
	return newTable("bind_cols", t.nrows, cols)
}

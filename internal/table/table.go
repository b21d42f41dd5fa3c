// Package table provides the immutable Table and the verbs that transform
// it: projection, filtering, sorting, mutation, grouping and summarising,
// nesting, pivoting, crossing, binding and joining.
//
// Every verb returns a new Table and leaves its receiver untouched.
// Unmodified columns are shared between the input and output tables; this
// is safe because Series are immutable. Column expressions from package
// expr are evaluated when a verb is applied, so unknown column names are
// reported at that point.
package table

import (
	"fmt"
	"slices"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/validation"
)

// Table is an ordered collection of uniquely named, equal-length columns.
type Table struct {
	columns []*series.Series
	index   map[string]int
	nrows   int
	// nested holds zero-row prototypes of the tables in columns made by
	// Nest, so Unnest keeps their schema when no cell holds a table.
	nested map[string]*Table
}

// New creates a table from columns. Names must be unique and all columns
// must have the same length.
func New(columns ...*series.Series) (*Table, error) {
	n := 0
	if len(columns) > 0 {
		n = columns[0].Len()
	}
	return newTable("new", n, columns)
}

// MustNew is like New but panics on error. It is meant for literals in
// tests and examples.
func MustNew(columns ...*series.Series) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns a table with n rows and no columns.
func Empty(n int) *Table {
	return &Table{index: map[string]int{}, nrows: n}
}

func newTable(op string, n int, columns []*series.Series) (*Table, error) {
	names := make([]string, len(columns))
	validators := make([]validation.Validator, 0, len(columns)+1)
	for i, c := range columns {
		names[i] = c.Name()
		validators = append(validators, validation.NewLengthValidator(n, c.Len(), op, "column "+c.Name()))
	}
	validators = append(validators, validation.NewUniqueNamesValidator(op, names...))
	if err := validation.NewCompoundValidator(validators...).Validate(); err != nil {
		return nil, err
	}
	return build(n, columns), nil
}

// build assembles a table from columns already known to be consistent.
func build(n int, columns []*series.Series) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c.Name()] = i
	}
	return &Table{columns: columns, index: index, nrows: n}
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.nrows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Shape returns the row and column counts.
func (t *Table) Shape() (int, int) { return t.nrows, len(t.columns) }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// Columns returns the columns in order.
func (t *Table) Columns() []*series.Series { return slices.Clone(t.columns) }

// Column looks up a column by name.
func (t *Table) Column(name string) (*series.Series, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Pull returns a single column.
func (t *Table) Pull(name string) (*series.Series, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, errors.NewUnknownColumnError("pull", name, t.ColumnNames())
	}
	return col, nil
}

// Row returns the values of row i keyed by column name.
func (t *Table) Row(i int) (map[string]any, error) {
	if err := validation.ValidateIndex(i, t.nrows, "row"); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(t.columns))
	for _, c := range t.columns {
		out[c.Name()] = c.Value(i)
	}
	return out, nil
}

// Equal reports whether two tables have the same columns in the same order
// with the same values.
func (t *Table) Equal(other *Table) bool {
	if t.nrows != other.nrows || len(t.columns) != len(other.columns) {
		return false
	}
	for i, c := range t.columns {
		if !series.Equal(c, other.columns[i]) {
			return false
		}
	}
	return true
}

// columnsOf looks up several columns, failing on the first unknown name.
func (t *Table) columnsOf(op string, names []string) ([]*series.Series, error) {
	if err := validation.ValidateColumns(t, op, names...); err != nil {
		return nil, err
	}
	out := make([]*series.Series, len(names))
	for i, name := range names {
		out[i] = t.columns[t.index[name]]
	}
	return out, nil
}

// take gathers rows by index into a new table. -1 yields missing values.
func (t *Table) take(rows []int) *Table {
	cols := make([]*series.Series, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Take(rows)
	}
	out := build(len(rows), cols)
	out.nested = t.nested
	return out
}

// withColumn adds col or replaces the column of the same name in place.
func (t *Table) withColumn(col *series.Series) *Table {
	cols := slices.Clone(t.columns)
	var out *Table
	if i, ok := t.index[col.Name()]; ok {
		cols[i] = col
		out = build(t.nrows, cols)
	} else {
		out = build(t.nrows, append(cols, col))
	}
	out.nested = t.nestedExcept(col.Name())
	return out
}

// without removes the named columns.
func (t *Table) without(names ...string) *Table {
	cols := make([]*series.Series, 0, len(t.columns))
	for _, c := range t.columns {
		if !slices.Contains(names, c.Name()) {
			cols = append(cols, c)
		}
	}
	out := build(t.nrows, cols)
	out.nested = t.nestedExcept(names...)
	return out
}

func (t *Table) nestedExcept(names ...string) map[string]*Table {
	if len(t.nested) == 0 {
		return nil
	}
	out := make(map[string]*Table, len(t.nested))
	for name, proto := range t.nested {
		if !slices.Contains(names, name) {
			out[name] = proto
		}
	}
	return out
}

// rowsFrame presents a subset of a table's rows as an expr.Frame. Columns
// are gathered on first use.
type rowsFrame struct {
	t     *Table
	rows  []int
	cache map[string]*series.Series
}

func newRowsFrame(t *Table, rows []int) *rowsFrame {
	return &rowsFrame{t: t, rows: rows, cache: make(map[string]*series.Series)}
}

func (f *rowsFrame) Column(name string) (*series.Series, bool) {
	if c, ok := f.cache[name]; ok {
		return c, true
	}
	c, ok := f.t.Column(name)
	if !ok {
		return nil, false
	}
	c = c.Take(f.rows)
	f.cache[name] = c
	return c, true
}

func (f *rowsFrame) ColumnNames() []string { return f.t.ColumnNames() }

func (f *rowsFrame) Len() int { return len(f.rows) }

// scatter reassembles per-group results into one column in original row
// order. parts[g] holds the values for rows groups[g].
func scatter(name string, n int, groups [][]int, parts []*series.Series) (*series.Series, error) {
	if len(parts) == 0 {
		return series.NewNull(name, n), nil
	}
	all, err := series.Concat(name, false, parts...)
	if err != nil {
		return nil, fmt.Errorf("combining group results for %s: %w", name, err)
	}
	positions := make([]int, n)
	p := 0
	for _, rows := range groups {
		for _, r := range rows {
			positions[r] = p
			p++
		}
	}
	return all.Take(positions), nil
}

var _ expr.Frame = (*Table)(nil)

package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/validation"
)

// Reducer collapses the values of one pivot cell to a single value.
type Reducer func(values *series.Series) (*series.Series, error)

// AggregateWith returns a Reducer applying a built-in aggregation.
func AggregateWith(aggType expr.AggregationType) Reducer {
	return func(values *series.Series) (*series.Series, error) {
		return expr.Reduce(aggType, values)
	}
}

// PivotWiderOptions configures PivotWider.
type PivotWiderOptions struct {
	NamesFrom   string  // column whose distinct values become column names
	ValuesFrom  string  // column whose values fill the new columns
	ValuesFn    Reducer // combines duplicate cells; nil makes duplicates an error
	NamesPrefix string  // prepended to every new column name
	ValuesFill  any     // value for absent cells; nil leaves them missing
}

// missingName names the output column for a missing NamesFrom value.
const missingName = "NA"

// PivotWider spreads a name/value column pair into one column per distinct
// name, in first-seen order. All other columns identify the output rows.
func (t *Table) PivotWider(opts PivotWiderOptions) (*Table, error) {
	cols, err := t.columnsOf("pivot_wider", []string{opts.NamesFrom, opts.ValuesFrom})
	if err != nil {
		return nil, err
	}
	namesCol, valuesCol := cols[0], cols[1]
	ids := t.without(opts.NamesFrom, opts.ValuesFrom)

	var idGroups [][]int
	if t.nrows > 0 {
		idGroups = groupRows(ids.columns, t.nrows)
	}
	rowGroup := make([]int, t.nrows)
	for g, rows := range idGroups {
		for _, r := range rows {
			rowGroup[r] = g
		}
	}

	nameIndex := indexRows([]*series.Series{namesCol}, t.nrows)
	nameGroups := nameIndex.groups()
	outNames := make([]string, len(nameGroups))
	for k, rows := range nameGroups {
		outNames[k] = pivotPrefix(opts.NamesPrefix) + pivotName(namesCol.Value(rows[0]))
	}
	if err := validation.ValidateUniqueNames("pivot_wider", slices.Concat(ids.ColumnNames(), outNames)...); err != nil {
		return nil, err
	}

	out := make([]*series.Series, 0, ids.Width()+len(outNames))
	firsts := make([]int, len(idGroups))
	for g, rows := range idGroups {
		firsts[g] = rows[0]
	}
	for _, c := range ids.columns {
		out = append(out, c.Take(firsts))
	}

	for k, rows := range nameGroups {
		cells := make([][]int, len(idGroups))
		for _, r := range rows {
			cells[rowGroup[r]] = append(cells[rowGroup[r]], r)
		}
		col, err := pivotColumn(outNames[k], valuesCol, cells, opts, ids, firsts)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return build(len(idGroups), out), nil
}

func pivotName(v any) string {
	if v == nil {
		return missingName
	}
	return series.FormatValue(v)
}

// pivotColumn builds one output column from the value rows of each cell.
func pivotColumn(name string, values *series.Series, cells [][]int, opts PivotWiderOptions, ids *Table, firsts []int) (*series.Series, error) {
	var col *series.Series
	if opts.ValuesFn == nil {
		picks := make([]int, len(cells))
		for g, rows := range cells {
			switch len(rows) {
			case 0:
				picks[g] = -1
			case 1:
				picks[g] = rows[0]
			default:
				return nil, errors.NewAmbiguousPivotError(describeID(ids, firsts[g]), name, len(rows))
			}
		}
		col = values.Take(picks).Rename(name)
	} else {
		parts := make([]*series.Series, len(cells))
		for g, rows := range cells {
			if len(rows) == 0 {
				parts[g] = series.NewNull(name, 1)
				continue
			}
			reduced, err := opts.ValuesFn(values.Take(rows))
			if err != nil {
				return nil, fmt.Errorf("pivot_wider: reducing %s: %w", name, err)
			}
			if reduced.Len() != 1 {
				return nil, &errors.DataFrameError{
					Op: "pivot_wider", Column: name,
					Message: fmt.Sprintf("values function returned %d values", reduced.Len()),
					Cause:   errors.ErrNotScalarAggregation,
				}
			}
			parts[g] = reduced
		}
		var err error
		if col, err = series.Concat(name, false, parts...); err != nil {
			return nil, err
		}
	}

	if opts.ValuesFill == nil || col.NullCount() == 0 {
		return col, nil
	}
	return fillMissing(col, cells, opts.ValuesFill)
}

// fillMissing replaces the values of absent cells with fill.
func fillMissing(col *series.Series, cells [][]int, fill any) (*series.Series, error) {
	kind, ok := series.Supertype(col.Kind(), series.KindOf(fill), true)
	if !ok {
		return nil, fmt.Errorf("pivot_wider: fill value %v does not fit column %s of kind %s", fill, col.Name(), col.Kind())
	}
	values := col.Values()
	for g, rows := range cells {
		if len(rows) == 0 {
			values[g] = fill
		}
	}
	return series.Build(col.Name(), kind, values)
}

func describeID(ids *Table, row int) string {
	if ids.Width() == 0 {
		return "()"
	}
	parts := make([]string, ids.Width())
	for i, c := range ids.columns {
		parts[i] = c.Name() + "=" + series.FormatValue(c.Value(row))
	}
	return strings.Join(parts, ", ")
}

// PivotLongerOptions configures PivotLonger.
type PivotLongerOptions struct {
	Columns  expr.Selector // columns to stack
	NamesTo  string        // receives the stacked column names, default "name"
	ValuesTo string        // receives the stacked values, default "value"
}

// PivotLonger stacks the selected columns into a name column and a value
// column. Each input row yields one output row per selected column, in
// column order. Value kinds combine by supertype with string fallback.
func (t *Table) PivotLonger(opts PivotLongerOptions) (*Table, error) {
	if opts.NamesTo == "" {
		opts.NamesTo = "name"
	}
	if opts.ValuesTo == "" {
		opts.ValuesTo = "value"
	}
	if opts.Columns == nil {
		return nil, errors.NewInvalidInputError("pivot_longer", "no columns selected")
	}
	names, err := expr.ResolveAll("pivot_longer", t, opts.Columns)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.NewInvalidInputError("pivot_longer", "no columns selected")
	}
	stacked, err := t.columnsOf("pivot_longer", names)
	if err != nil {
		return nil, err
	}
	ids := t.without(names...)
	if err := validation.ValidateUniqueNames("pivot_longer", slices.Concat(ids.ColumnNames(), []string{opts.NamesTo, opts.ValuesTo})...); err != nil {
		return nil, err
	}

	n, k := t.nrows, len(names)
	idRows := make([]int, n*k)
	perm := make([]int, n*k)
	nameValues := make([]any, n*k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			idRows[i*k+j] = i
			perm[i*k+j] = j*n + i
			nameValues[i*k+j] = names[j]
		}
	}

	all, err := series.Concat(opts.ValuesTo, true, stacked...)
	if err != nil {
		return nil, fmt.Errorf("pivot_longer: %w", err)
	}
	nameCol, err := series.Build(opts.NamesTo, series.KindString, nameValues)
	if err != nil {
		return nil, err
	}

	out := make([]*series.Series, 0, ids.Width()+2)
	for _, c := range ids.columns {
		out = append(out, c.Take(idRows))
	}
	out = append(out, nameCol, all.Take(perm))
	return build(n*k, out), nil
}

// pivotPrefix joins a non-empty prefix to pivot names with the configured
// separator.
func pivotPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + config.GetGlobalConfig().PivotNamesSep
}

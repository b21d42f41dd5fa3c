package table

import (
	"slices"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/validation"
)

// Select keeps the columns matched by the selectors, in selector order and
// without duplicates.
func (t *Table) Select(sels ...expr.Selector) (*Table, error) {
	names, err := expr.ResolveAll("select", t, sels...)
	if err != nil {
		return nil, err
	}
	cols, err := t.columnsOf("select", names)
	if err != nil {
		return nil, err
	}
	return build(t.nrows, cols), nil
}

// Drop removes the columns matched by the selectors.
func (t *Table) Drop(sels ...expr.Selector) (*Table, error) {
	names, err := expr.ResolveAll("drop", t, sels...)
	if err != nil {
		return nil, err
	}
	return t.without(names...), nil
}

// Rename renames columns by an old → new mapping. Columns keep their
// positions.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	olds := make([]string, 0, len(mapping))
	for old := range mapping {
		olds = append(olds, old)
	}
	slices.Sort(olds)
	if err := validation.ValidateColumns(t, "rename", olds...); err != nil {
		return nil, err
	}

	cols := t.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		if to, ok := mapping[c.Name()]; ok {
			cols[i] = c.Rename(to)
		}
		names[i] = cols[i].Name()
	}
	if err := validation.ValidateUniqueNames("rename", names...); err != nil {
		return nil, err
	}
	return build(t.nrows, cols), nil
}

// RelocatePosition says where Relocate moves columns to.
type RelocatePosition struct {
	before, after string
}

// Before places relocated columns before the named column.
func Before(name string) RelocatePosition { return RelocatePosition{before: name} }

// After places relocated columns after the named column.
func After(name string) RelocatePosition { return RelocatePosition{after: name} }

// Relocate moves the selected columns to the front of the table, or next to
// an anchor column when a position is given.
func (t *Table) Relocate(sel expr.Selector, pos ...RelocatePosition) (*Table, error) {
	moved, err := expr.ResolveAll("relocate", t, sel)
	if err != nil {
		return nil, err
	}
	rest := make([]string, 0, len(t.columns))
	for _, name := range t.ColumnNames() {
		if !slices.Contains(moved, name) {
			rest = append(rest, name)
		}
	}

	at := 0
	if len(pos) > 0 {
		anchor := pos[0].before + pos[0].after
		if slices.Contains(moved, anchor) {
			return nil, errors.NewInvalidInputError("relocate", "anchor column '"+anchor+"' is itself relocated")
		}
		i := slices.Index(rest, anchor)
		if i < 0 {
			return nil, errors.NewUnknownColumnError("relocate", anchor, t.ColumnNames())
		}
		at = i
		if pos[0].after != "" {
			at++
		}
	}

	order := slices.Concat(rest[:at], moved, rest[at:])
	cols, err := t.columnsOf("relocate", order)
	if err != nil {
		return nil, err
	}
	return build(t.nrows, cols), nil
}

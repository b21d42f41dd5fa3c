package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
	"github.com/paveg/tidyframe/internal/testutil"
)

func wideTable(t *testing.T) *table.Table {
	return testutil.NewTable(t,
		"id", []any{1, 2},
		"score_math", []any{90.5, 70.0},
		"score_art", []any{80.0, 60.5},
		"name", []any{"a", "b"},
	)
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		sels     []expr.Selector
		expected []string
		wantErr  error
	}{
		{name: "literal names in selector order", sels: []expr.Selector{expr.Cols("name", "id")}, expected: []string{"name", "id"}},
		{name: "prefix", sels: []expr.Selector{expr.StartsWith("score_")}, expected: []string{"score_math", "score_art"}},
		{name: "duplicates dropped", sels: []expr.Selector{expr.Cols("id"), expr.Everything()}, expected: []string{"id", "score_math", "score_art", "name"}},
		{name: "glob", sels: []expr.Selector{expr.Glob("*_art")}, expected: []string{"score_art"}},
		{name: "by kind", sels: []expr.Selector{expr.OfKind(series.KindFloat)}, expected: []string{"score_math", "score_art"}},
		{name: "except", sels: []expr.Selector{expr.Except(expr.StartsWith("score"))}, expected: []string{"id", "name"}},
		{name: "pattern matching nothing", sels: []expr.Selector{expr.EndsWith("_zzz")}, expected: []string{}},
		{name: "unknown literal", sels: []expr.Selector{expr.Cols("nam")}, wantErr: errors.ErrUnknownColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := wideTable(t).Select(tt.sels...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.ColumnNames())
			assert.Equal(t, 2, out.Len())
		})
	}
}

func TestSelectDropComplement(t *testing.T) {
	tbl := wideTable(t)
	sel := expr.StartsWith("score")

	kept, err := tbl.Select(sel)
	require.NoError(t, err)
	dropped, err := tbl.Drop(sel)
	require.NoError(t, err)

	assert.ElementsMatch(t, tbl.ColumnNames(), append(kept.ColumnNames(), dropped.ColumnNames()...))
	assert.Equal(t, []string{"id", "name"}, dropped.ColumnNames())
}

func TestRename(t *testing.T) {
	tbl := wideTable(t)

	out, err := tbl.Rename(map[string]string{"id": "key", "name": "label"})
	require.NoError(t, err)
	assert.Equal(t, []string{"key", "score_math", "score_art", "label"}, out.ColumnNames())

	_, err = tbl.Rename(map[string]string{"missing": "x"})
	require.ErrorIs(t, err, errors.ErrUnknownColumn)

	_, err = tbl.Rename(map[string]string{"id": "name"})
	require.ErrorIs(t, err, errors.ErrColumnNameCollision)

	swapped, err := tbl.Rename(map[string]string{"id": "name", "name": "id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score_math", "score_art", "id"}, swapped.ColumnNames())
}

func TestRelocate(t *testing.T) {
	tbl := testutil.NewTable(t, "a", []any{1}, "b", []any{2}, "c", []any{3}, "d", []any{4})

	tests := []struct {
		name     string
		sel      expr.Selector
		pos      []table.RelocatePosition
		expected []string
	}{
		{name: "to front", sel: expr.Cols("d"), expected: []string{"d", "a", "b", "c"}},
		{name: "after", sel: expr.Cols("d"), pos: []table.RelocatePosition{table.After("a")}, expected: []string{"a", "d", "b", "c"}},
		{name: "before", sel: expr.Cols("a", "b"), pos: []table.RelocatePosition{table.Before("d")}, expected: []string{"c", "a", "b", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tbl.Relocate(tt.sel, tt.pos...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.ColumnNames())
		})
	}

	_, err := tbl.Relocate(expr.Cols("a"), table.After("a"))
	require.Error(t, err)
	_, err = tbl.Relocate(expr.Cols("a"), table.After("z"))
	require.ErrorIs(t, err, errors.ErrUnknownColumn)
}

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

func TestNest(t *testing.T) {
	tbl := testutil.NewTable(t,
		"g", []any{"b", "a", "b"},
		"x", []any{1, 2, 3},
		"y", []any{"p", "q", "r"},
	)

	out, err := tbl.Nest([]string{"g"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "data"}, out.ColumnNames())
	assert.Equal(t, []any{"b", "a"}, testutil.Values(t, out, "g"))

	data := testutil.Values(t, out, "data")
	first, ok := data[0].(*table.Table)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, first.ColumnNames())
	assert.Equal(t, []any{int64(1), int64(3)}, testutil.Values(t, first, "x"))

	_, err = tbl.Nest([]string{"g"}, "g")
	require.ErrorIs(t, err, errors.ErrColumnNameCollision)
	_, err = tbl.Nest([]string{"nope"}, "")
	require.ErrorIs(t, err, errors.ErrUnknownColumn)
}

func TestNestUnnestRoundTrip(t *testing.T) {
	tbl := testutil.NewTable(t,
		"g", []any{"b", "a", "b", "c"},
		"x", []any{1, 2, 3, nil},
	)
	nested, err := tbl.Nest([]string{"g"}, "items")
	require.NoError(t, err)

	back, err := nested.Unnest("items")
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "x"}, back.ColumnNames())
	assert.Equal(t, tbl.Len(), back.Len())

	pairs := func(tb *table.Table) [][2]any {
		g, x := testutil.Values(t, tb, "g"), testutil.Values(t, tb, "x")
		out := make([][2]any, len(g))
		for i := range g {
			out[i] = [2]any{g[i], x[i]}
		}
		return out
	}
	assert.ElementsMatch(t, pairs(tbl), pairs(back))
}

func TestNestUnnestEmptyTableKeepsSchema(t *testing.T) {
	tbl := testutil.NewTable(t,
		"g", []any{"a"},
		"v", []any{1.5},
	).Head(0)

	nested, err := tbl.Nest([]string{"g"}, "data")
	require.NoError(t, err)
	assert.Equal(t, 0, nested.Len())

	back, err := nested.Unnest("data")
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "v"}, back.ColumnNames())
	v, err := back.Pull("v")
	require.NoError(t, err)
	assert.Equal(t, series.KindFloat, v.Kind())

	filtered, err := nested.Filter(expr.Col("g").Eq(expr.Lit("a")))
	require.NoError(t, err)
	back, err = filtered.Unnest("data")
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "v"}, back.ColumnNames())
}

func TestUnnest(t *testing.T) {
	inner1 := testutil.NewTable(t, "x", []any{1, 2})
	inner2 := testutil.NewTable(t, "x", []any{3.5}, "z", []any{"k"})

	t.Run("schema union pads missing columns", func(t *testing.T) {
		tbl, err := table.New(
			series.FromValues("id", []any{"a", "b", "c"}),
			series.NewObject("data", []any{inner1, nil, inner2}),
			series.FromValues("tail", []any{true, false, true}),
		)
		require.NoError(t, err)

		out, err := tbl.Unnest("data")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "x", "z", "tail"}, out.ColumnNames())
		assert.Equal(t, []any{"a", "a", "c"}, testutil.Values(t, out, "id"))
		assert.Equal(t, []any{1.0, 2.0, 3.5}, testutil.Values(t, out, "x"))
		assert.Equal(t, []any{nil, nil, "k"}, testutil.Values(t, out, "z"))
		assert.Equal(t, []any{true, true, true}, testutil.Values(t, out, "tail"))
	})

	t.Run("non-table cell", func(t *testing.T) {
		tbl, err := table.New(series.NewObject("data", []any{inner1, 42}))
		require.NoError(t, err)
		_, err = tbl.Unnest("data")
		require.ErrorIs(t, err, errors.ErrNotNestedTable)
	})

	t.Run("incompatible kinds", func(t *testing.T) {
		text := testutil.NewTable(t, "x", []any{"one"})
		tbl, err := table.New(series.NewObject("data", []any{inner1, text}))
		require.NoError(t, err)
		_, err = tbl.Unnest("data")
		require.ErrorIs(t, err, errors.ErrSchemaUnionConflict)
	})

	t.Run("clash with outer column", func(t *testing.T) {
		tbl, err := table.New(
			series.FromValues("x", []any{1}),
			series.NewObject("data", []any{inner1}),
		)
		require.NoError(t, err)
		_, err = tbl.Unnest("data")
		require.ErrorIs(t, err, errors.ErrColumnNameCollision)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := inner1.Unnest("data")
		require.ErrorIs(t, err, errors.ErrUnknownColumn)
	})
}

func TestCrossing(t *testing.T) {
	tbl := testutil.NewTable(t, "id", []any{"r1", "r2"})
	sides := series.FromValues("side", []any{"L", "R"})

	out, err := tbl.Crossing(sides)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())
	assert.Equal(t, []any{"r1", "r1", "r2", "r2"}, testutil.Values(t, out, "id"))
	assert.Equal(t, []any{"L", "R", "L", "R"}, testutil.Values(t, out, "side"))

	levels := series.FromValues("level", []any{1, 2, 3})
	multi, err := tbl.Head(1).Crossing(sides, levels)
	require.NoError(t, err)
	assert.Equal(t, 6, multi.Len())
	assert.Equal(t, []any{"L", "L", "L", "R", "R", "R"}, testutil.Values(t, multi, "side"))
	assert.Equal(t, []any{int64(1), int64(2), int64(3), int64(1), int64(2), int64(3)}, testutil.Values(t, multi, "level"))

	_, err = tbl.Crossing(series.FromValues("id", []any{"x"}))
	require.ErrorIs(t, err, errors.ErrColumnNameCollision)

	empty, err := tbl.Crossing(series.FromValues("none", []any{}))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestBind(t *testing.T) {
	a := testutil.NewTable(t, "x", []any{1, 2}, "y", []any{"a", "b"})
	b := testutil.NewTable(t, "y", []any{"c"}, "z", []any{true})

	rows, err := a.BindRows(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, rows.ColumnNames())
	assert.Equal(t, []any{int64(1), int64(2), nil}, testutil.Values(t, rows, "x"))
	assert.Equal(t, []any{"a", "b", "c"}, testutil.Values(t, rows, "y"))
	assert.Equal(t, []any{nil, nil, true}, testutil.Values(t, rows, "z"))

	_, err = a.BindRows(testutil.NewTable(t, "x", []any{"text"}))
	require.ErrorIs(t, err, errors.ErrSchemaUnionConflict)

	cols, err := a.BindCols(testutil.NewTable(t, "w", []any{0.5, 1.5}))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "w"}, cols.ColumnNames())

	_, err = a.BindCols(b)
	require.ErrorIs(t, err, errors.ErrMismatchedLength)
	_, err = a.BindCols(a)
	require.ErrorIs(t, err, errors.ErrColumnNameCollision)
}

func TestRowMapOverNestedTables(t *testing.T) {
	tbl := testutil.NewTable(t, "g", []any{"a", "b", "a"}, "v", []any{1, 2, 3})
	nested, err := tbl.Nest([]string{"g"}, "")
	require.NoError(t, err)

	sizes, err := nested.Mutate(expr.Assign("rows", expr.Map([]string{"data"},
		expr.Fn1(func(d *table.Table) int { return d.Len() }))))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(1)}, testutil.Values(t, sizes, "rows"))
}

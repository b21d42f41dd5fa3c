package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/testutil"
)

func TestMutate(t *testing.T) {
	tbl := testutil.NewTable(t,
		"x", []any{1, 2, 3},
		"y", []any{10, 20, 30},
	)
	x, y := expr.Col("x"), expr.Col("y")

	t.Run("later assignments see earlier ones", func(t *testing.T) {
		out, err := tbl.Mutate(
			expr.Assign("z", x.Mul(expr.Lit(2))),
			expr.Assign("w", expr.Col("z").Add(expr.Lit(1))),
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", "z", "w"}, out.ColumnNames())
		assert.Equal(t, []any{int64(3), int64(5), int64(7)}, testutil.Values(t, out, "w"))
	})

	t.Run("replacing keeps position", func(t *testing.T) {
		out, err := tbl.Mutate(expr.Assign("x", y.Sub(x)))
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, out.ColumnNames())
		assert.Equal(t, []any{int64(9), int64(18), int64(27)}, testutil.Values(t, out, "x"))
	})

	t.Run("aggregates broadcast", func(t *testing.T) {
		out, err := tbl.Mutate(expr.Alias(expr.Sum(x), "total"), expr.Assign("one", expr.Lit("k")))
		require.NoError(t, err)
		assert.Equal(t, []any{int64(6), int64(6), int64(6)}, testutil.Values(t, out, "total"))
		assert.Equal(t, []any{"k", "k", "k"}, testutil.Values(t, out, "one"))
	})

	t.Run("across with suffix", func(t *testing.T) {
		out, err := tbl.Mutate(expr.Across(expr.Everything(), func(e expr.Expr) expr.Expr {
			return expr.Binary(e, expr.OpMul, expr.Lit(10))
		}, expr.Suffix("_x10")))
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", "x_x10", "y_x10"}, out.ColumnNames())
		assert.Equal(t, []any{int64(100), int64(200), int64(300)}, testutil.Values(t, out, "y_x10"))
	})

	t.Run("across replacing sources", func(t *testing.T) {
		out, err := tbl.Mutate(expr.Across(expr.Cols("x"), func(e expr.Expr) expr.Expr {
			return expr.Binary(e, expr.OpAdd, expr.Lit(1))
		}))
		require.NoError(t, err)
		assert.Equal(t, []any{int64(2), int64(3), int64(4)}, testutil.Values(t, out, "x"))
	})

	t.Run("across naming onto another column", func(t *testing.T) {
		_, err := tbl.Mutate(expr.Across(expr.Cols("x"), func(e expr.Expr) expr.Expr { return e },
			expr.Names(func(string) string { return "y" })))
		require.ErrorIs(t, err, errors.ErrColumnNameCollision)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := tbl.Mutate(expr.Assign("z", expr.Col("q").Add(expr.Lit(1))))
		require.ErrorIs(t, err, errors.ErrUnknownColumn)
	})

	t.Run("case_when column", func(t *testing.T) {
		out, err := tbl.Mutate(expr.Assign("size", expr.Case(x.Ge(expr.Lit(3)), expr.Lit("big")).
			When(x.Ge(expr.Lit(2)), expr.Lit("mid")).
			Otherwise(expr.Lit("small"))))
		require.NoError(t, err)
		assert.Equal(t, []any{"small", "mid", "big"}, testutil.Values(t, out, "size"))
	})
}

func TestGroupedMutate(t *testing.T) {
	tbl := testutil.NewTable(t,
		"g", []any{"a", "b", "a", "b"},
		"v", []any{1, 10, 3, 30},
	)
	g, err := tbl.GroupBy("g")
	require.NoError(t, err)

	out, err := g.Mutate(
		expr.Alias(expr.Sum(expr.Col("v")), "group_total"),
		expr.Assign("share", expr.Col("v").Div(expr.Col("group_total"))),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"g"}, out.Keys())
	assert.Equal(t, []any{int64(4), int64(40), int64(4), int64(40)}, testutil.Values(t, out.Ungroup(), "group_total"))
	assert.Equal(t, []any{0.25, 0.25, 0.75, 0.75}, testutil.Values(t, out.Ungroup(), "share"))
}

func TestGroupedVerbsOnEmptyTable(t *testing.T) {
	tbl := testutil.NewTable(t,
		"g", []any{"a", "b"},
		"v", []any{1, 10},
	).Head(0)
	g, err := tbl.GroupBy("g")
	require.NoError(t, err)
	assert.Equal(t, 0, g.NGroups())

	out, err := g.Mutate(expr.Assign("w", expr.Col("v").Add(expr.Lit(1))))
	require.NoError(t, err)
	w, err := out.Ungroup().Pull("w")
	require.NoError(t, err)
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, series.KindInt, w.Kind())

	_, err = g.Mutate(expr.Assign("w", expr.Col("nope")))
	require.ErrorIs(t, err, errors.ErrUnknownColumn)

	_, err = g.Filter(expr.Col("nope").Gt(expr.Lit(1)))
	require.ErrorIs(t, err, errors.ErrUnknownColumn)

	kept, err := g.Filter(expr.Col("v").Gt(expr.Lit(1)))
	require.NoError(t, err)
	assert.Equal(t, 0, kept.Ungroup().Len())
}

func TestRowMapInMutate(t *testing.T) {
	tbl := testutil.NewTable(t,
		"a", []any{1, 5, 100},
		"b", []any{2, -20, 200},
		"c", []any{3, 7, 300},
	)
	out, err := tbl.Mutate(expr.Assign("smallest", expr.Map([]string{"a", "b", "c"},
		expr.Fn3(func(a, b, c int64) int64 { return min(a, b, c) }))))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(-20), int64(100)}, testutil.Values(t, out, "smallest"))
}

package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/testutil"
)

func TestFilter(t *testing.T) {
	tbl := testutil.NewTable(t,
		"x", []any{1, nil, 3, 4},
		"y", []any{"a", "b", "c", "d"},
	)
	x := expr.Col("x")

	tests := []struct {
		name     string
		preds    []expr.Expr
		expected []any
	}{
		{name: "missing counts as false", preds: []expr.Expr{x.Gt(expr.Lit(1))}, expected: []any{"c", "d"}},
		{name: "conjunction", preds: []expr.Expr{x.Gt(expr.Lit(1)), x.Lt(expr.Lit(4))}, expected: []any{"c"}},
		{name: "no predicates keeps everything", preds: nil, expected: []any{"a", "b", "c", "d"}},
		{name: "aggregate comparison", preds: []expr.Expr{x.Ge(expr.Mean(x))}, expected: []any{"c", "d"}},
		{name: "nothing passes", preds: []expr.Expr{x.Gt(expr.Lit(100))}, expected: []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tbl.Filter(tt.preds...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, testutil.Values(t, out, "y"))
		})
	}

	t.Run("non-boolean predicate", func(t *testing.T) {
		_, err := tbl.Filter(x.Add(expr.Lit(1)))
		require.Error(t, err)
	})
}

func TestGroupedFilter(t *testing.T) {
	tbl := testutil.NewTable(t,
		"g", []any{"a", "a", "b", "b"},
		"v", []any{1, 2, 3, 5},
	)
	g, err := tbl.GroupBy("g")
	require.NoError(t, err)

	out, err := g.Filter(expr.Col("v").Gt(expr.Mean(expr.Col("v"))))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(5)}, testutil.Values(t, out.Ungroup(), "v"))
	assert.Equal(t, 2, out.NGroups())
}

func TestRowSubsets(t *testing.T) {
	tbl := testutil.NewTable(t,
		"k", []any{"a", "b", "a", "c", "b"},
		"v", []any{1, nil, 1, 4, 5},
	)

	assert.Equal(t, []any{"a", "b"}, testutil.Values(t, tbl.Head(2), "k"))
	assert.Equal(t, []any{"c", "b"}, testutil.Values(t, tbl.Tail(2), "k"))
	assert.Equal(t, 5, tbl.Head(10).Len())
	assert.Equal(t, 0, tbl.Tail(-1).Len())

	sliced, err := tbl.Slice(4, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "a"}, testutil.Values(t, sliced, "k"))
	_, err = tbl.Slice(5)
	require.Error(t, err)

	distinct, err := tbl.Distinct()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c", "b"}, testutil.Values(t, distinct, "k"))

	keys, err := tbl.Distinct("k")
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys.ColumnNames())
	assert.Equal(t, []any{"a", "b", "c"}, testutil.Values(t, keys, "k"))

	complete, err := tbl.DropNull()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "a", "c", "b"}, testutil.Values(t, complete, "k"))
}

package expr_test

import (
	"testing"

	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func people() testFrame {
	return frameOf(
		series.FromValues("name", []any{"  ada lovelace ", "Grace Hopper", nil}),
		series.FromValues("code", []any{"ab-12", "cd-34", "ef-56"}),
		series.FromValues("x", []any{-1.5, 2.25, nil}),
		series.FromValues("n", []any{int64(-3), int64(4), int64(5)}),
		series.FromValues("alt", []any{"p", nil, "r"}),
	)
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		name     string
		expr     expr.Expr
		expected []any
	}{
		{"str_detect", expr.Fn("str_detect", expr.Col("code"), expr.Lit(`^c`)), []any{false, true, false}},
		{"str_replace first match", expr.Fn("str_replace", expr.Col("code"), expr.Lit(`[0-9]`), expr.Lit("#")), []any{"ab-#2", "cd-#4", "ef-#6"}},
		{"str_replace_all", expr.Fn("str_replace_all", expr.Col("code"), expr.Lit(`[0-9]`), expr.Lit("#")), []any{"ab-##", "cd-##", "ef-##"}},
		{"str_to_upper", expr.Fn("str_to_upper", expr.Col("code")), []any{"AB-12", "CD-34", "EF-56"}},
		{"str_to_title", expr.Fn("str_to_title", expr.Fn("str_trim", expr.Col("name"))), []any{"Ada Lovelace", "Grace Hopper", nil}},
		{"str_length", expr.Fn("str_length", expr.Col("code")), []any{int64(5), int64(5), int64(5)}},
		{"str_starts", expr.Fn("str_starts", expr.Col("code"), expr.Lit("ef")), []any{false, false, true}},
		{"str_sub", expr.Fn("str_sub", expr.Col("code"), expr.Lit(1), expr.Lit(2)), []any{"ab", "cd", "ef"}},
		{"str_sub from end", expr.Fn("str_sub", expr.Col("code"), expr.Lit(-2), expr.Lit(-1)), []any{"12", "34", "56"}},
		{"str_c", expr.StrC("/", expr.Col("code"), expr.Col("alt")), []any{"ab-12/p", nil, "ef-56/r"}},
		{"abs keeps int", expr.Fn("abs", expr.Col("n")), []any{int64(3), int64(4), int64(5)}},
		{"floor", expr.Fn("floor", expr.Col("x")), []any{-2.0, 2.0, nil}},
		{"round digits", expr.Fn("round", expr.Col("x"), expr.Lit(1)), []any{-1.5, 2.3, nil}},
		{"coalesce", expr.Coalesce(expr.Col("alt"), expr.Lit("none")), []any{"p", "none", "r"}},
		{"if_else", expr.IfElse(expr.Col("n").Gt(expr.Lit(0)), expr.Lit("pos"), expr.Lit("neg")), []any{"neg", "pos", "pos"}},
		{"is_in", expr.IsIn(expr.Col("n"), 4, 5.0), []any{false, true, true}},
		{"between", expr.Fn("between", expr.Col("n"), expr.Lit(0), expr.Lit(4)), []any{false, true, false}},
		{"cast to string", expr.Cast(expr.Col("n"), series.KindString), []any{"-3", "4", "5"}},
	}

	ev := expr.NewEvaluator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.expr, people())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.Values())
		})
	}
}

func TestFunctions_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr expr.Expr
	}{
		{"str function on numbers", expr.Fn("str_to_upper", expr.Col("n"))},
		{"bad pattern", expr.Fn("str_detect", expr.Col("code"), expr.Lit("("))},
		{"non-scalar pattern", expr.Fn("str_detect", expr.Col("code"), expr.Col("code"))},
		{"coalesce of incompatible kinds", expr.Coalesce(expr.Col("n"), expr.Col("code"))},
		{"if_else on numbers", expr.IfElse(expr.Col("n"), expr.Lit(1), expr.Lit(2))},
		{"unknown cast target", expr.Fn("cast", expr.Col("n"), expr.Lit("date"))},
	}

	ev := expr.NewEvaluator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ev.Evaluate(tt.expr, people())
			assert.Error(t, err)
		})
	}
}

func TestAggregations(t *testing.T) {
	f := frameOf(
		series.FromValues("v", []any{int64(4), nil, int64(1), int64(3), int64(4)}),
		series.FromValues("g", []any{"b", "a", "c", nil, "a"}),
	)

	tests := []struct {
		name     string
		expr     expr.Expr
		expected any
	}{
		{"sum keeps int", expr.Sum(expr.Col("v")), int64(12)},
		{"mean skips missing", expr.Mean(expr.Col("v")), 3.0},
		{"median", expr.Median(expr.Col("v")), 3.5},
		{"min", expr.Min(expr.Col("v")), int64(1)},
		{"max string", expr.Max(expr.Col("g")), "c"},
		{"var", expr.Var(expr.Col("v")), 2.0},
		{"count non-missing", expr.Count(expr.Col("v")), int64(4)},
		{"n rows", expr.N(), int64(5)},
		{"n_distinct counts missing once", expr.NDistinct(expr.Col("g")), int64(4)},
		{"first", expr.First(expr.Col("g")), "b"},
		{"last", expr.Last(expr.Col("v")), int64(4)},
	}

	ev := expr.NewEvaluator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.expr, f)
			require.NoError(t, err)
			require.Equal(t, 1, got.Len())
			assert.Equal(t, tt.expected, got.Value(0))
			assert.True(t, expr.IsAggregation(tt.expr))
		})
	}

	_, err := ev.Evaluate(expr.Mean(expr.Col("g")), f)
	assert.Error(t, err)
	assert.False(t, expr.IsAggregation(expr.Col("v").Add(expr.Sum(expr.Col("v")))))
}

func TestReduce_Empty(t *testing.T) {
	empty := series.FromValues("v", []any{nil, nil})

	got, err := expr.Reduce(expr.AggMean, empty)
	require.NoError(t, err)
	assert.Nil(t, got.Value(0))

	got, err = expr.Reduce(expr.AggSd, series.FromValues("v", []any{1.0}))
	require.NoError(t, err)
	assert.Nil(t, got.Value(0))
}

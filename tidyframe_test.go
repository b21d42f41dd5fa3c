package tidyframe_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tf "github.com/paveg/tidyframe"
)

func values(t *testing.T, tbl *tf.Table, name string) []any {
	t.Helper()
	s, err := tbl.Pull(name)
	require.NoError(t, err)
	return s.Values()
}

func survey(t *testing.T) *tf.Table {
	t.Helper()
	return tf.MustNewTable(
		tf.NewSeries("region", []any{"North", "South", "North", "South", "East"}),
		tf.NewSeries("age", []any{34, 17, 52, 41, nil}),
		tf.NewSeries("income", []any{52.5, 0.0, 61.0, 48.5, 39.0}),
	)
}

func TestVerbsLeaveInputUnchanged(t *testing.T) {
	tbl := survey(t)
	before := tbl.String()

	_, err := tf.NewPipeline(
		tf.Mutate(tf.Assign("age", tf.Col("age").Add(tf.Lit(1)))),
		tf.Filter(tf.Col("income").Gt(tf.Lit(10))),
		tf.Arrange(tf.Desc(tf.Col("income"))),
		tf.Select(tf.Cols("region", "age")),
	).Apply(tbl)
	require.NoError(t, err)

	assert.Equal(t, before, tbl.String())
	assert.Equal(t, []any{int64(34), int64(17), int64(52), int64(41), nil}, values(t, tbl, "age"))
}

func TestSelectComplementRecombines(t *testing.T) {
	tbl := survey(t)

	picked, err := tbl.Select(tf.StartsWith("a"))
	require.NoError(t, err)
	rest, err := tbl.Drop(tf.StartsWith("a"))
	require.NoError(t, err)
	whole, err := rest.BindCols(picked)
	require.NoError(t, err)

	assert.ElementsMatch(t, tbl.ColumnNames(), whole.ColumnNames())
	for _, name := range tbl.ColumnNames() {
		assert.Equal(t, values(t, tbl, name), values(t, whole, name), name)
	}
}

func TestArrangeIsStable(t *testing.T) {
	tbl := tf.MustNewTable(
		tf.NewSeries("k", []any{2, 1, 2, 1, 2}),
		tf.NewSeries("pos", []any{0, 1, 2, 3, 4}),
	)
	out, err := tbl.Arrange(tf.Col("k"))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(3), int64(0), int64(2), int64(4)}, values(t, out, "pos"))
}

func TestPivotRoundTrip(t *testing.T) {
	long := tf.MustNewTable(
		tf.NewSeries("id", []any{1, 1, 2, 2}),
		tf.NewSeries("key", []any{"x", "y", "x", "y"}),
		tf.NewSeries("val", []any{10, 20, 30, 40}),
	)
	out, err := tf.NewPipeline(
		tf.PivotWider(tf.PivotWiderOptions{NamesFrom: "key", ValuesFrom: "val"}),
		tf.PivotLonger(tf.PivotLongerOptions{Columns: tf.Cols("x", "y"), NamesTo: "key", ValuesTo: "val"}),
	).Apply(long)
	require.NoError(t, err)
	assert.True(t, long.Equal(out), "got\n%s", out)
}

func TestPivotWiderWithAggregation(t *testing.T) {
	tbl := tf.MustNewTable(
		tf.NewSeries("id", []any{1, 1, 2}),
		tf.NewSeries("key", []any{"x", "x", "y"}),
		tf.NewSeries("val", []any{1, 2, 5}),
	)
	out, err := tbl.PivotWider(tf.PivotWiderOptions{NamesFrom: "key", ValuesFrom: "val", ValuesFn: tf.AggregateWith(tf.AggSum)})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3), nil}, values(t, out, "x"))
	assert.Equal(t, []any{nil, int64(5)}, values(t, out, "y"))
}

func TestCaseFirstMatch(t *testing.T) {
	tbl := tf.MustNewTable(tf.NewSeries("z", []any{"a", "b", "c"}))

	built := tf.Case(tf.Col("z").Eq(tf.Lit("a")), tf.Lit(1)).
		When(tf.Col("z").Eq(tf.Lit("b")), tf.Lit(2)).
		Otherwise(tf.Lit(0))
	positional, err := tf.CaseWhen(
		tf.Col("z").Eq(tf.Lit("a")), tf.Lit(1),
		tf.Col("z").Eq(tf.Lit("b")), tf.Lit(2),
	)
	require.NoError(t, err)

	out, err := tbl.Mutate(
		tf.Assign("built", built),
		tf.Assign("positional", tf.Coalesce(positional, tf.Lit(0))),
	)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(0)}, values(t, out, "built"))
	assert.Equal(t, []any{int64(1), int64(2), int64(0)}, values(t, out, "positional"))
}

func TestCrossingSingleRow(t *testing.T) {
	tbl := tf.MustNewTable(tf.NewSeries("model", []any{"m1"}), tf.NewSeries("n", []any{120}))

	out, err := tbl.Crossing(
		tf.NewSeries("outcome", []any{"A", "B"}),
		tf.NewSeries("adjusted", []any{"Yes", "No"}),
	)
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())
	assert.Equal(t, []any{"m1", "m1", "m1", "m1"}, values(t, out, "model"))
	assert.Equal(t, []any{int64(120), int64(120), int64(120), int64(120)}, values(t, out, "n"))

	distinct, err := out.Distinct("outcome", "adjusted")
	require.NoError(t, err)
	assert.Equal(t, 4, distinct.Len())
}

func TestNestUnnestRoundTrip(t *testing.T) {
	tbl := survey(t)
	back, err := tf.NewPipeline(tf.Nest([]string{"region"}, "data"), tf.Unnest("data")).Apply(tbl)
	require.NoError(t, err)

	rows := func(tb *tf.Table) []string {
		out := make([]string, tb.Len())
		for i := range out {
			row, err := tb.Row(i)
			require.NoError(t, err)
			out[i] = fmt.Sprint(row["region"], "|", row["age"], "|", row["income"])
		}
		return out
	}
	assert.ElementsMatch(t, rows(tbl), rows(back))
}

func TestRowMapMin(t *testing.T) {
	tbl := tf.MustNewTable(
		tf.NewSeries("a", []any{1, 10, 100}),
		tf.NewSeries("b", []any{2, -20, 100}),
	)
	minimum := tf.Fn2(func(a, b int64) int64 { return min(a, b) })

	tests := []struct {
		name string
		opts tf.MapOptions
	}{
		{name: "sequential"},
		{name: "parallel", opts: tf.MapOptions{Parallel: true, Workers: 2, Threshold: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tbl.Mutate(tf.Assign("m", tf.Map([]string{"a", "b"}, minimum).WithOptions(tt.opts)))
			require.NoError(t, err)
			assert.Equal(t, []any{int64(1), int64(-20), int64(100)}, values(t, out, "m"))
		})
	}
}

func TestGroupSummariseAcross(t *testing.T) {
	out, err := tf.NewPipeline(
		tf.Filter(tf.IsNotNull(tf.Col("age"))),
		tf.GroupSummarise([]string{"region"},
			tf.Across(tf.OfKind(tf.KindInt, tf.KindFloat), func(e tf.Expr) tf.Expr { return tf.Max(e) }, tf.Suffix("_max")),
			tf.Alias(tf.N(), "n"),
		),
	).Apply(survey(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "age_max", "income_max", "n"}, out.ColumnNames())
	assert.Equal(t, []any{"North", "South"}, values(t, out, "region"))
	assert.Equal(t, []any{int64(52), int64(41)}, values(t, out, "age_max"))
	assert.Equal(t, []any{int64(2), int64(2)}, values(t, out, "n"))
}

func TestPipelineErrorNamesStep(t *testing.T) {
	_, err := tf.NewPipeline(
		tf.Select(tf.Everything()),
		tf.Filter(tf.Col("missing").Gt(tf.Lit(1))),
	).Apply(survey(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, tf.ErrUnknownColumn)
	assert.Contains(t, err.Error(), "step 1")
}

func TestArrowRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tbl := survey(t)
	err := tf.WithRecord(tbl, mem, func(rec arrow.Record) error {
		back, err := tf.FromArrow(rec)
		if err != nil {
			return err
		}
		assert.True(t, tbl.Equal(back))
		return nil
	})
	require.NoError(t, err)
}

func TestReadWriteAndLabels(t *testing.T) {
	dir := t.TempDir()
	tbl := tf.MustNewTable(tf.NewSeries("sex", []any{1, 2, 1}), tf.NewSeries("score", []any{3.5, nil, 4.0}))
	path := filepath.Join(dir, "coded.csv")
	require.NoError(t, tf.WriteCSV(tbl, path))

	sidecar := filepath.Join(dir, "coded.json")
	require.NoError(t, tf.NewLabels([]string{"sex", "score"},
		map[string]string{"sex": "Respondent sex"},
		map[string]map[string]string{"sex": {"1": "Male", "2": "Female"}},
	).Save(sidecar))

	back, lbl, err := tf.ReadData(context.Background(), tf.ReadOptions{Path: path, Labels: sidecar, Silent: true})
	require.NoError(t, err)
	assert.True(t, tbl.Equal(back), "got\n%s", back)

	recoded, err := lbl.Recode(back)
	require.NoError(t, err)
	assert.Equal(t, []any{"Male", "Female", "Male"}, values(t, recoded, "sex"))

	renamed, err := lbl.RenameToLabels(back)
	require.NoError(t, err)
	assert.Equal(t, []string{"Respondent sex", "score"}, renamed.ColumnNames())

	loaded, err := tf.LoadLabels(sidecar)
	require.NoError(t, err)
	assert.Equal(t, "Respondent sex", loaded.Variable("sex"))
}

func TestToLatex(t *testing.T) {
	out, err := tf.ToLatex(survey(t).Head(2), tf.LatexOptions{Caption: "Survey"})
	require.NoError(t, err)
	assert.Contains(t, out, "\\caption{Survey}")
	assert.Contains(t, out, "North & 34 & 52.50 \\\\")

	third, err := survey(t).Slice(2)
	require.NoError(t, err)
	whole, err := tf.ToLatex(third, tf.LatexOptions{Digits: tf.LatexDecimals(0)})
	require.NoError(t, err)
	assert.Contains(t, whole, "North & 52 & 61 \\\\")
}

func TestConfigureAndMetrics(t *testing.T) {
	prev := tf.CurrentConfig()
	defer func() { require.NoError(t, tf.Configure(prev)) }()

	cfg := prev
	cfg.MetricsCollection = true
	require.NoError(t, tf.Configure(cfg))
	tf.ResetMetrics()

	_, err := tf.NewPipeline(tf.Filter(tf.Col("income").Gt(tf.Lit(40))),
		tf.Then("head", func(t *tf.Table) (*tf.Table, error) { return t.Head(1), nil }),
	).Apply(survey(t))
	require.NoError(t, err)
	assert.Len(t, tf.Metrics(), 2)
	assert.Equal(t, 2, tf.MetricsReport().TotalOperations)

	cfg.WorkerPoolSize = -1
	require.Error(t, tf.Configure(cfg))

	path := filepath.Join(t.TempDir(), "tidyframe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display_max_rows: 7\n"), 0o600))
	require.NoError(t, tf.LoadConfig(path))
	assert.Equal(t, 7, tf.CurrentConfig().DisplayMaxRows)
}

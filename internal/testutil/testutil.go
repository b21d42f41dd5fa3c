// Package testutil provides fixtures and assertions shared by the package
// tests.
//
// It consolidates the patterns repeated across test files:
// - Standard employee table creation
// - Column value extraction
// - Table equality assertions
package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
)

const (
	// defaultRowCount is the default number of rows in test tables.
	defaultRowCount = 4
)

// TestTableOption configures test table creation.
type TestTableOption func(*testTableConfig)

type testTableConfig struct {
	includeNulls bool
	rowCount     int
	withActive   bool
}

// WithNulls replaces every third salary with a missing value.
func WithNulls() TestTableOption {
	return func(cfg *testTableConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestTableOption {
	return func(cfg *testTableConfig) {
		cfg.rowCount = count
	}
}

// WithActiveColumn includes an 'active' boolean column.
func WithActiveColumn() TestTableOption {
	return func(cfg *testTableConfig) {
		cfg.withActive = true
	}
}

// CreateTestTable creates the standard employee table.
//
// Default table:
// - name (string): ["Alice", "Bob", "Charlie", "David"]
// - age (int): [25, 30, 35, 28]
// - department (string): ["Engineering", "Sales", "Engineering", "Marketing"]
// - salary (int): [100000, 80000, 120000, 75000]
//
// Example usage:
//
//	tbl := testutil.CreateTestTable(t, testutil.WithActiveColumn())
func CreateTestTable(tb testing.TB, opts ...TestTableOption) *table.Table {
	tb.Helper()
	cfg := &testTableConfig{rowCount: defaultRowCount}
	for _, opt := range opts {
		opt(cfg)
	}

	cols := []*series.Series{
		series.New("name", generateNames(cfg.rowCount), nil),
		series.New("age", generateAges(cfg.rowCount), nil),
		series.New("department", generateDepartments(cfg.rowCount), nil),
		generateSalaries(cfg.rowCount, cfg.includeNulls),
	}
	if cfg.withActive {
		cols = append(cols, series.New("active", generateActiveFlags(cfg.rowCount), nil))
	}

	tbl, err := table.New(cols...)
	require.NoError(tb, err)
	return tbl
}

// NewTable builds a table from name/values pairs, failing the test on error.
//
//	tbl := testutil.NewTable(t, "x", []any{1, 2}, "y", []any{"a", nil})
func NewTable(tb testing.TB, pairs ...any) *table.Table {
	tb.Helper()
	require.Zero(tb, len(pairs)%2, "NewTable takes name/values pairs")
	cols := make([]*series.Series, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		require.True(tb, ok, "argument %d must be a column name", i)
		values, ok := pairs[i+1].([]any)
		require.True(tb, ok, "argument %d must be []any", i+1)
		cols = append(cols, series.FromValues(name, values))
	}
	tbl, err := table.New(cols...)
	require.NoError(tb, err)
	return tbl
}

// Values returns the values of a column, failing the test when it is missing.
func Values(tb testing.TB, tbl *table.Table, name string) []any {
	tb.Helper()
	col, err := tbl.Pull(name)
	require.NoError(tb, err)
	return col.Values()
}

// AssertTableEqual compares shape, column names, kinds and values.
func AssertTableEqual(tb testing.TB, expected, actual *table.Table) {
	tb.Helper()

	require.NotNil(tb, expected, "expected table should not be nil")
	require.NotNil(tb, actual, "actual table should not be nil")

	assert.Equal(tb, expected.Len(), actual.Len(), "table lengths should match")
	require.Equal(tb, expected.ColumnNames(), actual.ColumnNames(), "table columns should match")

	for _, name := range expected.ColumnNames() {
		e, _ := expected.Column(name)
		a, _ := actual.Column(name)
		assert.Equal(tb, e.Kind(), a.Kind(), "column %s kind should match", name)
		assert.Equal(tb, e.Values(), a.Values(), "column %s data should match", name)
	}
}

// AssertTableHasColumns verifies that a table has exactly the expected
// columns in order.
func AssertTableHasColumns(tb testing.TB, tbl *table.Table, expectedColumns []string) {
	tb.Helper()

	require.NotNil(tb, tbl, "table should not be nil")
	assert.Equal(tb, expectedColumns, tbl.ColumnNames())
}

// Helper functions for generating test data

func generateNames(count int) []string {
	baseNames := []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry"}
	names := make([]string, count)
	for i := range count {
		names[i] = baseNames[i%len(baseNames)]
	}
	return names
}

func generateAges(count int) []int64 {
	baseAges := []int64{25, 30, 35, 28, 32, 45, 29, 38}
	ages := make([]int64, count)
	for i := range count {
		ages[i] = baseAges[i%len(baseAges)]
	}
	return ages
}

func generateDepartments(count int) []string {
	baseDepts := []string{"Engineering", "Sales", "Engineering", "Marketing", "HR", "Finance", "Engineering", "Sales"}
	departments := make([]string, count)
	for i := range count {
		departments[i] = baseDepts[i%len(baseDepts)]
	}
	return departments
}

func generateSalaries(count int, withNulls bool) *series.Series {
	baseSalaries := []int64{100000, 80000, 120000, 75000, 90000, 110000, 95000, 85000}
	salaries := make([]any, count)
	for i := range count {
		if withNulls && i%3 == 2 {
			continue
		}
		salaries[i] = baseSalaries[i%len(baseSalaries)]
	}
	s, _ := series.Build("salary", series.KindInt, salaries)
	return s
}

func generateActiveFlags(count int) []bool {
	baseFlags := []bool{true, true, false, true, true, false, true, false}
	flags := make([]bool, count)
	for i := range count {
		flags[i] = baseFlags[i%len(baseFlags)]
	}
	return flags
}

// Package tidyframe provides tidyverse-style verbs over Arrow-backed tables.
// This package is the sole public API for the library.
//
// Tables are immutable: every verb returns a new table and leaves its input
// untouched. Verbs compose into reusable pipelines, expressions are built
// lazily and evaluated against a table when a verb runs, and object columns
// carry per-row payloads such as nested tables.
//
//	tbl, _, err := tidyframe.ReadData(ctx, tidyframe.ReadOptions{Path: "survey.csv"})
//	out, err := tidyframe.NewPipeline(
//		tidyframe.Filter(tidyframe.Col("age").Ge(tidyframe.Lit(18))),
//		tidyframe.GroupSummarise([]string{"region"}, tidyframe.Alias(tidyframe.Mean(tidyframe.Col("income")), "income")),
//	).Apply(tbl)
package tidyframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/monitoring"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
)

// Core types.
type (
	// Table is an ordered collection of uniquely named, equal-length columns.
	Table = table.Table
	// GroupedTable is a table partitioned by key columns.
	GroupedTable = table.GroupedTable
	// Series is a single named column.
	Series = series.Series
	// Kind classifies the values a Series holds.
	Kind = series.Kind
	// JoinType selects the rows a join keeps.
	JoinType = table.JoinType
	// JoinOptions specifies join parameters.
	JoinOptions        = table.JoinOptions
	PivotWiderOptions  = table.PivotWiderOptions
	PivotLongerOptions = table.PivotLongerOptions
	RelocatePosition   = table.RelocatePosition
	DisplayOptions     = table.DisplayOptions
	Reducer            = table.Reducer
	Config             = config.Config
	OperationMetrics   = monitoring.OperationMetrics
	MetricsSummary     = monitoring.MetricsSummary
)

// Column kinds.
const (
	KindNull        = series.KindNull
	KindBool        = series.KindBool
	KindInt         = series.KindInt
	KindFloat       = series.KindFloat
	KindString      = series.KindString
	KindCategorical = series.KindCategorical
	KindObject      = series.KindObject
)

// Join types.
const (
	InnerJoin = table.InnerJoin
	LeftJoin  = table.LeftJoin
	RightJoin = table.RightJoin
	FullJoin  = table.FullJoin
	SemiJoin  = table.SemiJoin
	AntiJoin  = table.AntiJoin
)

// NewTable creates a table from columns. Names must be unique and lengths
// equal.
func NewTable(columns ...*Series) (*Table, error) {
	return table.New(columns...)
}

// MustNewTable is like NewTable but panics on error.
func MustNewTable(columns ...*Series) *Table {
	return table.MustNew(columns...)
}

// NewSeries creates a column from boxed values, inferring the narrowest kind
// holding every non-nil value. nil is a missing value.
func NewSeries(name string, values []any) *Series {
	return series.FromValues(name, values)
}

// NewTypedSeries creates a column of an explicit kind, coercing each value.
func NewTypedSeries(name string, kind Kind, values []any) (*Series, error) {
	return series.Build(name, kind, values)
}

// NewCategorical creates a categorical column. With nil levels the levels
// are the distinct values in first-seen order.
func NewCategorical(name string, values []any, levels []string) (*Series, error) {
	return series.NewCategorical(name, values, levels)
}

// NewObjectSeries creates a column of arbitrary per-row payloads.
func NewObjectSeries(name string, values []any) *Series {
	return series.NewObject(name, values)
}

// FromArrow builds a table from an Arrow record. The record may be released
// afterwards.
func FromArrow(rec arrow.Record) (*Table, error) {
	return table.FromArrow(rec)
}

// WithRecord exports t as an Arrow record, passes it to fn and releases it.
func WithRecord(t *Table, mem memory.Allocator, fn func(arrow.Record) error) error {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	rec, err := t.ToArrow(mem)
	if err != nil {
		return err
	}
	defer rec.Release()
	return fn(rec)
}

// Before places relocated columns before the named column.
func Before(name string) RelocatePosition { return table.Before(name) }

// After places relocated columns after the named column.
func After(name string) RelocatePosition { return table.After(name) }

// AggregateWith returns a Reducer applying a built-in aggregation, for
// PivotWiderOptions.ValuesFn.
func AggregateWith(agg AggregationType) Reducer {
	return table.AggregateWith(agg)
}

// Configure replaces the global configuration after validating it and
// switches metrics collection to match.
func Configure(cfg Config) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)
	monitoring.Global().SetEnabled(cfg.MetricsCollection)
	return nil
}

// CurrentConfig returns the global configuration.
func CurrentConfig() Config {
	return config.GetGlobalConfig()
}

// LoadConfig reads a json, yaml or toml configuration file and applies it.
func LoadConfig(path string) error {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return err
	}
	return Configure(cfg)
}

// Metrics returns the per-verb timings recorded since the last reset.
func Metrics() []OperationMetrics {
	return monitoring.Global().GetMetrics()
}

// MetricsReport summarises the recorded timings.
func MetricsReport() MetricsSummary {
	return monitoring.Global().GetSummary()
}

// ResetMetrics discards recorded timings.
func ResetMetrics() {
	monitoring.Global().Clear()
}

package table

import (
	"fmt"
	"strings"

	"github.com/paveg/tidyframe/internal/common"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/logging"
	"github.com/paveg/tidyframe/internal/monitoring"
	"github.com/paveg/tidyframe/internal/series"
)

// Verb is one step of a Pipeline.
type Verb interface {
	Apply(t *Table) (*Table, error)
	String() string
}

// verb adapts a function to the Verb interface.
type verb struct {
	name string
	desc string
	fn   func(*Table) (*Table, error)
}

func (v *verb) Apply(t *Table) (*Table, error) { return v.fn(t) }

func (v *verb) String() string {
	if v.desc == "" {
		return v.name
	}
	return common.FormatFunction(v.name, v.desc)
}

func describe[T fmt.Stringer](items []T) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}

// SelectVerb keeps the selected columns.
func SelectVerb(sels ...expr.Selector) Verb {
	return &verb{name: "select", desc: describe(sels), fn: func(t *Table) (*Table, error) { return t.Select(sels...) }}
}

// FilterVerb keeps rows where every predicate holds.
func FilterVerb(preds ...expr.Expr) Verb {
	return &verb{name: "filter", desc: describe(preds), fn: func(t *Table) (*Table, error) { return t.Filter(preds...) }}
}

// ArrangeVerb sorts rows.
func ArrangeVerb(keys ...expr.Expr) Verb {
	return &verb{name: "arrange", desc: describe(keys), fn: func(t *Table) (*Table, error) { return t.Arrange(keys...) }}
}

// MutateVerb adds or replaces columns.
func MutateVerb(args ...expr.Arg) Verb {
	return &verb{name: "mutate", fn: func(t *Table) (*Table, error) { return t.Mutate(args...) }}
}

// SummariseVerb reduces the table to one row.
func SummariseVerb(args ...expr.Arg) Verb {
	return &verb{name: "summarise", fn: func(t *Table) (*Table, error) { return t.Summarise(args...) }}
}

// GroupSummariseVerb groups by keys and summarises each group.
func GroupSummariseVerb(keys []string, args ...expr.Arg) Verb {
	return &verb{name: "group_summarise", desc: strings.Join(keys, ", "), fn: func(t *Table) (*Table, error) {
		g, err := t.GroupBy(keys...)
		if err != nil {
			return nil, err
		}
		return g.Summarise(args...)
	}}
}

// NestVerb nests the non-key columns into a column of tables.
func NestVerb(keys []string, into string) Verb {
	return &verb{name: "nest", desc: strings.Join(keys, ", "), fn: func(t *Table) (*Table, error) { return t.Nest(keys, into) }}
}

// UnnestVerb expands a column of nested tables.
func UnnestVerb(column string) Verb {
	return &verb{name: "unnest", desc: column, fn: func(t *Table) (*Table, error) { return t.Unnest(column) }}
}

// CrossingVerb replicates rows over every combination of the sequences.
func CrossingVerb(seqs ...*series.Series) Verb {
	names := make([]string, len(seqs))
	for i, s := range seqs {
		names[i] = s.Name()
	}
	return &verb{name: "crossing", desc: strings.Join(names, ", "), fn: func(t *Table) (*Table, error) { return t.Crossing(seqs...) }}
}

// PivotWiderVerb spreads names and values into columns.
func PivotWiderVerb(opts PivotWiderOptions) Verb {
	return &verb{name: "pivot_wider", desc: opts.NamesFrom + ", " + opts.ValuesFrom, fn: func(t *Table) (*Table, error) { return t.PivotWider(opts) }}
}

// PivotLongerVerb stacks columns into name and value columns.
func PivotLongerVerb(opts PivotLongerOptions) Verb {
	return &verb{name: "pivot_longer", fn: func(t *Table) (*Table, error) { return t.PivotLonger(opts) }}
}

// Then wraps a custom step.
func Then(name string, fn func(*Table) (*Table, error)) Verb {
	return &verb{name: name, fn: fn}
}

// Pipeline is an ordered list of verbs applied one after another. A
// Pipeline holds no data and can be applied to any number of tables.
type Pipeline struct {
	steps []Verb
}

// NewPipeline creates a pipeline from steps.
func NewPipeline(steps ...Verb) *Pipeline {
	return &Pipeline{steps: append([]Verb(nil), steps...)}
}

// Then returns a new pipeline with step appended.
func (p *Pipeline) Then(step Verb) *Pipeline {
	steps := make([]Verb, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	return &Pipeline{steps: append(steps, step)}
}

// Steps returns the pipeline's verbs in order.
func (p *Pipeline) Steps() []Verb { return append([]Verb(nil), p.steps...) }

// String lists the steps joined by pipes.
func (p *Pipeline) String() string {
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " |> ")
}

// Apply runs every step in order. The first failure stops the pipeline; the
// error names the step and its position and no table is returned.
func (p *Pipeline) Apply(t *Table) (*Table, error) {
	log := logging.Logger()
	collector := monitoring.Global()
	current := t
	for i, step := range p.steps {
		log.Debug("applying verb", "step", i, "verb", step.String(), "rows", current.Len())
		var next *Table
		err := collector.RecordOperation(step.String(), i, current.Len(), func() (monitoring.Result, error) {
			out, err := step.Apply(current)
			if err != nil {
				return monitoring.Result{}, err
			}
			next = out
			return monitoring.Result{Rows: out.Len(), Columns: out.Width()}, nil
		})
		if err != nil {
			return nil, fmt.Errorf("pipeline step %d (%s): %w", i, step, err)
		}
		current = next
	}
	return current, nil
}

package tidyframe

import "github.com/paveg/tidyframe/internal/table"

type (
	// Verb is one step of a Pipeline.
	Verb = table.Verb
	// Pipeline is a reusable, data-free sequence of verbs.
	Pipeline = table.Pipeline
)

// NewPipeline creates a pipeline from steps.
func NewPipeline(steps ...Verb) *Pipeline { return table.NewPipeline(steps...) }

func Select(sels ...Selector) Verb { return table.SelectVerb(sels...) }
func Filter(preds ...Expr) Verb    { return table.FilterVerb(preds...) }
func Arrange(keys ...Expr) Verb    { return table.ArrangeVerb(keys...) }
func Mutate(args ...Arg) Verb      { return table.MutateVerb(args...) }
func Summarise(args ...Arg) Verb   { return table.SummariseVerb(args...) }

// GroupSummarise groups by keys and summarises each group.
func GroupSummarise(keys []string, args ...Arg) Verb { return table.GroupSummariseVerb(keys, args...) }

// Nest collapses the non-key columns of each key group into a nested table
// stored in column into.
func Nest(keys []string, into string) Verb { return table.NestVerb(keys, into) }

func Unnest(column string) Verb { return table.UnnestVerb(column) }

// Crossing replicates every row over each combination of the sequences.
func Crossing(seqs ...*Series) Verb { return table.CrossingVerb(seqs...) }

func PivotWider(opts PivotWiderOptions) Verb   { return table.PivotWiderVerb(opts) }
func PivotLonger(opts PivotLongerOptions) Verb { return table.PivotLongerVerb(opts) }

// Then wraps a custom step.
func Then(name string, fn func(*Table) (*Table, error)) Verb { return table.Then(name, fn) }

package table

import (
	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// Crossing replicates every row once per combination of the sequences,
// appending one column per sequence. The first sequence varies slowest.
// The row count grows by the product of the sequence lengths. A sequence
// named like an existing column, or like another sequence, is a
// ColumnNameCollisionError.
func (t *Table) Crossing(seqs ...*series.Series) (*Table, error) {
	seen := make(map[string]bool, len(seqs))
	factor := 1
	for _, s := range seqs {
		if t.HasColumn(s.Name()) || seen[s.Name()] {
			return nil, errors.NewColumnNameCollisionError("crossing", s.Name())
		}
		seen[s.Name()] = true
		factor *= s.Len()
	}
	if len(seqs) == 0 {
		return t, nil
	}

	n := t.nrows * factor
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i / factor
	}
	out := make([]*series.Series, 0, t.Width()+len(seqs))
	for _, c := range t.columns {
		out = append(out, c.Take(rows))
	}

	// Sequence k repeats each value stride times, where stride is the
	// product of the lengths of the sequences after it.
	stride := factor
	for _, s := range seqs {
		stride /= max(s.Len(), 1)
		idx := make([]int, n)
		for i := range idx {
			idx[i] = (i % factor) / max(stride, 1) % max(s.Len(), 1)
		}
		out = append(out, s.Take(idx))
	}
	return build(n, out), nil
}

package table

import (
	"fmt"
	"slices"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/validation"
)

// JoinType represents the type of join operation
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
	SemiJoin
	AntiJoin
)

var joinTypeNames = map[JoinType]string{
	InnerJoin: "inner_join", LeftJoin: "left_join", RightJoin: "right_join",
	FullJoin: "full_join", SemiJoin: "semi_join", AntiJoin: "anti_join",
}

func (jt JoinType) String() string { return joinTypeNames[jt] }

// JoinOptions specifies join parameters
type JoinOptions struct {
	Type     JoinType
	By       []string  // key columns present in both tables; empty joins on all shared names
	Suffixes [2]string // appended to clashing non-key columns; empty uses the configured suffixes
}

// Join combines two tables on equal key values. Missing keys match each
// other. Output rows follow the left table's order; right and full joins
// append the unmatched right rows at the end. Semi and anti joins keep
// only left columns.
func (t *Table) Join(right *Table, opts JoinOptions) (*Table, error) {
	op := opts.Type.String()
	by := opts.By
	if len(by) == 0 {
		for _, name := range t.ColumnNames() {
			if right.HasColumn(name) {
				by = append(by, name)
			}
		}
		if len(by) == 0 {
			return nil, errors.NewInvalidInputError(op, "tables share no columns to join by")
		}
	}
	leftKeys, err := t.columnsOf(op, by)
	if err != nil {
		return nil, err
	}
	rightKeys, err := right.columnsOf(op, by)
	if err != nil {
		return nil, err
	}

	index := indexRows(rightKeys, right.nrows)
	leftRows, rightRows := matchRows(opts.Type, leftKeys, t.nrows, index, right.nrows)

	if opts.Type == SemiJoin || opts.Type == AntiJoin {
		return t.take(leftRows), nil
	}
	return assembleJoin(op, t, right, by, leftRows, rightRows, opts.Suffixes)
}

// matchRows pairs left and right row indices. -1 marks a row without a
// partner.
func matchRows(jt JoinType, leftKeys []*series.Series, nleft int, index *keyIndex, nright int) ([]int, []int) {
	var leftRows, rightRows []int
	matchedRight := make([]bool, nright)
	for i := 0; i < nleft; i++ {
		matches, ok := index.get(rowKey(leftKeys, i))
		switch jt {
		case SemiJoin:
			if ok {
				leftRows = append(leftRows, i)
			}
			continue
		case AntiJoin:
			if !ok {
				leftRows = append(leftRows, i)
			}
			continue
		}
		if !ok {
			if jt == LeftJoin || jt == FullJoin {
				leftRows = append(leftRows, i)
				rightRows = append(rightRows, -1)
			}
			continue
		}
		for _, r := range matches {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, r)
			matchedRight[r] = true
		}
	}
	if jt == RightJoin || jt == FullJoin {
		for r, matched := range matchedRight {
			if !matched {
				leftRows = append(leftRows, -1)
				rightRows = append(rightRows, r)
			}
		}
	}
	return leftRows, rightRows
}

func assembleJoin(op string, left, right *Table, by []string, leftRows, rightRows []int, suffixes [2]string) (*Table, error) {
	if suffixes == ([2]string{}) {
		cfg := config.GetGlobalConfig().JoinSuffixes
		if len(cfg) != 2 {
			cfg = config.DefaultJoinSuffixes
		}
		suffixes = [2]string{cfg[0], cfg[1]}
	}
	n := len(leftRows)
	out := make([]*series.Series, 0, left.Width()+right.Width()-len(by))

	for _, c := range left.columns {
		name := c.Name()
		if slices.Contains(by, name) {
			rc, _ := right.Column(name)
			key, err := coalesceKey(name, c, rc, leftRows, rightRows)
			if err != nil {
				return nil, fmt.Errorf("%s: key %s: %w", op, name, err)
			}
			out = append(out, key)
			continue
		}
		if right.HasColumn(name) {
			name += suffixes[0]
		}
		out = append(out, c.Take(leftRows).Rename(name))
	}
	for _, c := range right.columns {
		name := c.Name()
		if slices.Contains(by, name) {
			continue
		}
		if left.HasColumn(name) {
			name += suffixes[1]
		}
		out = append(out, c.Take(rightRows).Rename(name))
	}

	names := make([]string, len(out))
	for i, c := range out {
		names[i] = c.Name()
	}
	if err := validation.ValidateUniqueNames(op, names...); err != nil {
		return nil, err
	}
	return build(n, out), nil
}

// coalesceKey takes key values from the left row, or from the right row
// when there is no left partner.
func coalesceKey(name string, l, r *series.Series, leftRows, rightRows []int) (*series.Series, error) {
	both, err := series.Concat(name, false, l, r)
	if err != nil {
		return nil, err
	}
	picks := make([]int, len(leftRows))
	for i, lr := range leftRows {
		if lr >= 0 {
			picks[i] = lr
		} else {
			picks[i] = l.Len() + rightRows[i]
		}
	}
	return both.Take(picks), nil
}

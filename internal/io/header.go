package io

import (
	"fmt"
	"strings"

	"github.com/paveg/tidyframe/internal/errors"
)

const (
	defaultCombineSep = "; "
	defaultSentinel   = "None"
)

// HeaderOptions describes a header spread over several rows, such as a
// merged "Party" cell above "Code" and "Value" sub-columns.
type HeaderOptions struct {
	// N is the number of header rows. Zero means a plain one-row header.
	N int
	// Combine joins the cleaned levels of one column into its name. The
	// default produces "level1 (level2; level3)".
	Combine func(levels []string) string
	// CombineSep separates the lower levels inside the parentheses of the
	// default combiner.
	CombineSep string
	// Sentinel marks a merged cell continuing from the left in upper rows
	// and an absent label in the last row.
	Sentinel string
}

// ParenCombiner returns the default combiner: the first level followed by
// the remaining levels in parentheses, joined by sep.
func ParenCombiner(sep string) func([]string) string {
	return func(levels []string) string {
		if len(levels) == 0 {
			return ""
		}
		if len(levels) == 1 {
			return levels[0]
		}
		return fmt.Sprintf("%s (%s)", levels[0], strings.Join(levels[1:], sep))
	}
}

// JoinCombiner returns a combiner joining every level with sep, e.g.
// "Party_Code".
func JoinCombiner(sep string) func([]string) string {
	return func(levels []string) string {
		return strings.Join(levels, sep)
	}
}

func (o HeaderOptions) withDefaults() HeaderOptions {
	if o.CombineSep == "" {
		o.CombineSep = defaultCombineSep
	}
	if o.Sentinel == "" {
		o.Sentinel = defaultSentinel
	}
	if o.Combine == nil {
		o.Combine = ParenCombiner(o.CombineSep)
	}
	return o
}

// FlattenHeader turns header rows, top level first, into one name per
// column.
//
// Blank or sentinel cells in upper rows take the value to their left; in
// the last row they are ignored. A column whose top level is shared with no
// other column is named by that level alone; otherwise its levels are
// combined. Columns with no levels at all are named column_<k>, 1-based.
func FlattenHeader(rows [][]string, width int, opts HeaderOptions) ([]string, error) {
	if len(rows) == 0 {
		return nil, errors.NewInvalidInputError("flatten_header", "at least one header row is required")
	}
	opts = opts.withDefaults()

	missing := func(s string) bool {
		return strings.TrimSpace(s) == "" || s == opts.Sentinel
	}

	levels := make([][]string, width)
	last := len(rows) - 1
	for r, row := range rows {
		if len(row) > width {
			return nil, errors.NewInvalidInputError("flatten_header",
				fmt.Sprintf("header row %d has %d cells but the data has %d columns", r+1, len(row), width))
		}
		carry := ""
		for c := range width {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			if missing(cell) {
				if r == last {
					continue
				}
				cell = carry
			} else {
				carry = cell
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				levels[c] = append(levels[c], cell)
			}
		}
	}

	bases := make(map[string]int)
	for _, l := range levels {
		if len(l) > 0 {
			bases[l[0]]++
		}
	}

	names := make([]string, width)
	for c, l := range levels {
		switch {
		case len(l) == 0:
			names[c] = fmt.Sprintf("column_%d", c+1)
		case bases[l[0]] == 1:
			names[c] = l[0]
		default:
			names[c] = opts.Combine(l)
		}
	}
	return names, nil
}

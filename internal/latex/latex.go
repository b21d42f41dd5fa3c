// Package latex renders tables as booktabs LaTeX table environments with
// optional grouped headers, row groups, captions and footnotes.
package latex

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/expr"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
)

const (
	defaultPosition = "!htb"
	defaultDigits   = 2
)

// HeaderGroup is one cell of the upper header row, spanning Span columns.
// An empty Label leaves the spanned columns without a group heading.
type HeaderGroup struct {
	Label string
	Span  int
}

// Header describes the column headings. Columns replaces the column names
// in the lower row; Groups adds an upper row whose spans must cover every
// rendered column.
type Header struct {
	Columns []string
	Groups  []HeaderGroup
}

// Options controls Render.
type Options struct {
	Header    Header
	Caption   string
	Label     string
	Align     string // tabular column spec; default r for numbers, l otherwise
	Footnotes []string
	// GroupRowsBy moves a column's values into headings above contiguous
	// row blocks, in order of first appearance.
	GroupRowsBy string
	Position    string // float placement, default !htb
	Digits      *int   // decimals for floats, default 2; negative uses the locale default
	Missing     string // text for missing cells
	Language    language.Tag
}

var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Decimals returns a Digits value of n decimals.
func Decimals(n int) *int { return &n }

// Escape quotes the characters LaTeX treats specially.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Render returns the LaTeX source of a table environment for t.
func Render(t *table.Table, opts Options) (string, error) {
	if opts.Position == "" {
		opts.Position = defaultPosition
	}
	digits := defaultDigits
	if opts.Digits != nil {
		digits = *opts.Digits
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}

	body := t
	var groups []string
	var groupRows map[string][]int
	if opts.GroupRowsBy != "" {
		col, err := t.Pull(opts.GroupRowsBy)
		if err != nil {
			return "", fmt.Errorf("latex: %w", err)
		}
		if body, err = t.Drop(expr.Cols(opts.GroupRowsBy)); err != nil {
			return "", fmt.Errorf("latex: %w", err)
		}
		groupRows = make(map[string][]int)
		for i := range t.Len() {
			key := series.FormatValue(col.Value(i))
			if col.IsNull(i) {
				key = opts.Missing
			}
			if _, ok := groupRows[key]; !ok {
				groups = append(groups, key)
			}
			groupRows[key] = append(groupRows[key], i)
		}
	}

	cols := body.Columns()
	ncol := len(cols)
	if ncol == 0 {
		return "", errors.NewInvalidInputError("latex", "table has no columns to render")
	}

	titles := body.ColumnNames()
	if opts.Header.Columns != nil {
		if len(opts.Header.Columns) != ncol {
			return "", errors.NewInvalidInputError("latex",
				fmt.Sprintf("header has %d column titles for %d columns", len(opts.Header.Columns), ncol))
		}
		titles = opts.Header.Columns
	}
	if err := checkGroups(opts.Header.Groups, ncol); err != nil {
		return "", err
	}

	align := opts.Align
	if align == "" {
		var b strings.Builder
		for _, c := range cols {
			if c.Kind().IsNumeric() {
				b.WriteByte('r')
			} else {
				b.WriteByte('l')
			}
		}
		align = b.String()
	}

	p := message.NewPrinter(opts.Language)
	cell := func(c *series.Series, i int) string {
		if c.IsNull(i) {
			return Escape(opts.Missing)
		}
		switch v := c.Value(i).(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return series.FormatValue(v)
			}
			if digits < 0 {
				return p.Sprint(number.Decimal(v))
			}
			return p.Sprint(number.Decimal(v,
				number.MinFractionDigits(digits),
				number.MaxFractionDigits(digits)))
		case int64:
			return p.Sprint(number.Decimal(v))
		default:
			return Escape(series.FormatValue(v))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\\begin{table}[%s]\n", opts.Position)
	b.WriteString("\\centering\n")
	if opts.Caption != "" {
		fmt.Fprintf(&b, "\\caption{%s}\n", Escape(opts.Caption))
	}
	if opts.Label != "" {
		fmt.Fprintf(&b, "\\label{%s}\n", opts.Label)
	}
	fmt.Fprintf(&b, "\\begin{tabular}{%s}\n", align)
	b.WriteString("\\toprule\n")

	if len(opts.Header.Groups) > 0 {
		writeGroupHeader(&b, opts.Header.Groups)
	}
	escaped := make([]string, ncol)
	for i, title := range titles {
		escaped[i] = Escape(title)
	}
	writeRow(&b, escaped)
	b.WriteString("\\midrule\n")

	row := make([]string, ncol)
	writeRows := func(rows []int) {
		for _, i := range rows {
			for j, c := range cols {
				row[j] = cell(c, i)
			}
			writeRow(&b, row)
		}
	}
	if groups == nil {
		rows := make([]int, body.Len())
		for i := range rows {
			rows[i] = i
		}
		writeRows(rows)
	} else {
		for g, key := range groups {
			if g > 0 {
				b.WriteString("\\addlinespace\n")
			}
			fmt.Fprintf(&b, "\\multicolumn{%d}{l}{\\textbf{%s}} \\\\\n", ncol, Escape(key))
			writeRows(groupRows[key])
		}
	}

	b.WriteString("\\bottomrule\n")
	for _, note := range opts.Footnotes {
		fmt.Fprintf(&b, "\\multicolumn{%d}{l}{\\footnotesize %s} \\\\\n", ncol, Escape(note))
	}
	b.WriteString("\\end{tabular}\n")
	b.WriteString("\\end{table}\n")
	return b.String(), nil
}

func checkGroups(groups []HeaderGroup, ncol int) error {
	if len(groups) == 0 {
		return nil
	}
	total := 0
	for _, g := range groups {
		if g.Span < 1 {
			return errors.NewInvalidInputError("latex", fmt.Sprintf("header group %q has span %d", g.Label, g.Span))
		}
		total += g.Span
	}
	if total != ncol {
		return errors.NewInvalidInputError("latex",
			fmt.Sprintf("header groups span %d columns but the table has %d", total, ncol))
	}
	return nil
}

// writeGroupHeader writes the upper header row and a \cmidrule under every
// labelled group.
func writeGroupHeader(b *strings.Builder, groups []HeaderGroup) {
	cells := make([]string, len(groups))
	var rules []string
	start := 1
	for i, g := range groups {
		label := Escape(g.Label)
		if g.Span > 1 {
			label = fmt.Sprintf("\\multicolumn{%d}{c}{%s}", g.Span, label)
		}
		cells[i] = label
		if g.Label != "" {
			rules = append(rules, fmt.Sprintf("\\cmidrule(lr){%d-%d}", start, start+g.Span-1))
		}
		start += g.Span
	}
	writeRow(b, cells)
	if len(rules) > 0 {
		b.WriteString(strings.Join(rules, " "))
		b.WriteByte('\n')
	}
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString(strings.Join(cells, " & "))
	b.WriteString(" \\\\\n")
}

package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rivo/uniseg"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/series"
)

// DisplayOptions controls how a table is printed. Zero values use the
// global configuration.
type DisplayOptions struct {
	MaxRows   int // rows shown before truncating
	Precision int // digits after the decimal point for floats
}

const missingCell = "NA"

var kindAbbrev = map[series.Kind]string{
	series.KindNull:        "<null>",
	series.KindBool:        "<lgl>",
	series.KindInt:         "<int>",
	series.KindFloat:       "<dbl>",
	series.KindString:      "<chr>",
	series.KindCategorical: "<fct>",
	series.KindObject:      "<obj>",
}

// String renders the table with the configured display settings and no
// terminal styling.
func (t *Table) String() string {
	var b strings.Builder
	_ = t.render(&b, DisplayOptions{}, false)
	return b.String()
}

// Print writes the table to w. The header is bold when w is a terminal
// that supports it.
func (t *Table) Print(w io.Writer, opts DisplayOptions) error {
	return t.render(w, opts, true)
}

func (t *Table) render(w io.Writer, opts DisplayOptions, styled bool) error {
	cfg := config.GetGlobalConfig()
	if opts.MaxRows <= 0 {
		opts.MaxRows = cfg.DisplayMaxRows
	}
	if opts.Precision <= 0 {
		opts.Precision = cfg.FloatPrecision
	}
	shown := min(t.nrows, opts.MaxRows)

	// One text column for row numbers, then one per table column.
	grid := make([][]string, len(t.columns)+1)
	grid[0] = make([]string, shown+2)
	for i := 0; i < shown; i++ {
		grid[0][i+2] = strconv.Itoa(i + 1)
	}
	for j, c := range t.columns {
		cells := make([]string, shown+2)
		cells[0] = c.Name()
		cells[1] = kindAbbrev[c.Kind()]
		for i := 0; i < shown; i++ {
			cells[i+2] = formatCell(c.Value(i), opts.Precision)
		}
		grid[j+1] = cells
	}

	widths := make([]int, len(grid))
	for j, cells := range grid {
		for _, s := range cells {
			widths[j] = max(widths[j], uniseg.StringWidth(s))
		}
	}

	out := termenv.NewOutput(w)
	var b strings.Builder
	fmt.Fprintf(&b, "# A table: %d x %d\n", t.nrows, len(t.columns))
	for i := 0; i < shown+2; i++ {
		var line strings.Builder
		for j, cells := range grid {
			if j > 0 {
				line.WriteByte(' ')
			}
			line.WriteString(pad(cells[i], widths[j], j == 0))
		}
		text := strings.TrimRight(line.String(), " ")
		if i == 0 && styled {
			text = out.String(text).Bold().String()
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	if rest := t.nrows - shown; rest > 0 {
		fmt.Fprintf(&b, "# ... with %d more rows\n", rest)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// pad aligns s to width; row numbers are right-aligned, cells left-aligned.
func pad(s string, width int, right bool) string {
	gap := width - uniseg.StringWidth(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func formatCell(v any, precision int) string {
	switch x := v.(type) {
	case nil:
		return missingCell
	case float64:
		s := strconv.FormatFloat(x, 'f', precision, 64)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		}
		return s
	}
	return series.FormatValue(v)
}

package tidyframe

import "github.com/paveg/tidyframe/internal/latex"

type (
	// LatexOptions controls ToLatex.
	LatexOptions     = latex.Options
	LatexHeader      = latex.Header
	LatexHeaderGroup = latex.HeaderGroup
)

// ToLatex renders t as a booktabs table environment.
func ToLatex(t *Table, opts LatexOptions) (string, error) { return latex.Render(t, opts) }

// LatexDecimals sets LatexOptions.Digits to n decimals. Zero is allowed.
func LatexDecimals(n int) *int { return latex.Decimals(n) }

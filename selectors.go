package tidyframe

import "github.com/paveg/tidyframe/internal/expr"

// Selector resolves to column names against a table's schema.
type Selector = expr.Selector

func Cols(names ...string) Selector     { return expr.Cols(names...) }
func StartsWith(prefix string) Selector { return expr.StartsWith(prefix) }
func EndsWith(suffix string) Selector   { return expr.EndsWith(suffix) }
func Contains(sub string) Selector      { return expr.Contains(sub) }
func Matches(pattern string) Selector   { return expr.Matches(pattern) }
func Glob(pattern string) Selector      { return expr.Glob(pattern) }
func Everything() Selector              { return expr.Everything() }
func OfKind(kinds ...Kind) Selector     { return expr.OfKind(kinds...) }
func Except(inner Selector) Selector    { return expr.Except(inner) }

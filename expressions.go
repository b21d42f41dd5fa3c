package tidyframe

import "github.com/paveg/tidyframe/internal/expr"

// Expression types.
type (
	// Expr is a lazily evaluated column expression.
	Expr = expr.Expr
	// Arg is a Mutate or Summarise argument: an expression, a named
	// assignment or an across expansion.
	Arg             = expr.Arg
	Assignment      = expr.Assignment
	AggregationType = expr.AggregationType
	AcrossOption    = expr.AcrossOption
	// Row is the positional tuple handed to a row-wise function.
	Row        = expr.Row
	MapFunc    = expr.MapFunc
	MapOptions = expr.MapOptions
)

// Aggregations accepted by AggregateWith.
const (
	AggSum       = expr.AggSum
	AggMean      = expr.AggMean
	AggMedian    = expr.AggMedian
	AggMin       = expr.AggMin
	AggMax       = expr.AggMax
	AggSd        = expr.AggSd
	AggVar       = expr.AggVar
	AggCount     = expr.AggCount
	AggN         = expr.AggN
	AggNDistinct = expr.AggNDistinct
	AggFirst     = expr.AggFirst
	AggLast      = expr.AggLast
)

// Col references a column by name.
func Col(name string) *expr.ColumnExpr { return expr.Col(name) }

// Lit is a constant broadcast to every row. nil is a missing value.
func Lit(value any) *expr.LiteralExpr { return expr.Lit(value) }

// Alias names the result of e.
func Alias(e Expr, name string) *expr.AliasExpr { return expr.Alias(e, name) }

// Assign binds e to an output column name.
func Assign(name string, e Expr) Assignment { return expr.Assign(name, e) }

// Desc marks an Arrange key as descending.
func Desc(e Expr) *expr.SortExpr { return expr.Desc(e) }

// Not negates a boolean expression.
func Not(e Expr) *expr.UnaryExpr { return expr.Unary(expr.UnaryNot, e) }

// Neg negates a numeric expression.
func Neg(e Expr) *expr.UnaryExpr { return expr.Unary(expr.UnaryNeg, e) }

// IsNull is true where e is missing.
func IsNull(e Expr) *expr.UnaryExpr { return expr.Unary(expr.UnaryIsNull, e) }

// IsNotNull is true where e is present.
func IsNotNull(e Expr) *expr.UnaryExpr { return expr.Unary(expr.UnaryIsNotNull, e) }

// Fn calls a named scalar function.
func Fn(name string, args ...Expr) *expr.FunctionExpr { return expr.Fn(name, args...) }

// IfElse picks yes where cond holds and no elsewhere.
func IfElse(cond, yes, no Expr) *expr.FunctionExpr { return expr.IfElse(cond, yes, no) }

// Coalesce takes the first present value per row.
func Coalesce(args ...Expr) *expr.FunctionExpr { return expr.Coalesce(args...) }

// IsIn is true where e equals one of values.
func IsIn(e Expr, values ...any) *expr.FunctionExpr { return expr.IsIn(e, values...) }

// Cast converts e to kind.
func Cast(e Expr, kind Kind) *expr.FunctionExpr { return expr.Cast(e, kind) }

// StrC concatenates the string forms of args with sep.
func StrC(sep string, args ...Expr) *expr.FunctionExpr { return expr.StrC(sep, args...) }

// Case starts a case expression with its first clause. Add clauses with
// When and a default with Otherwise.
func Case(condition, value Expr) *expr.CaseExpr { return expr.Case(condition, value) }

// CaseWhen builds a case expression from alternating condition and value
// arguments.
func CaseWhen(args ...Expr) (*expr.CaseExpr, error) { return expr.NewCaseWhen(args...) }

func Sum(e Expr) *expr.AggregationExpr       { return expr.Sum(e) }
func Mean(e Expr) *expr.AggregationExpr      { return expr.Mean(e) }
func Median(e Expr) *expr.AggregationExpr    { return expr.Median(e) }
func Min(e Expr) *expr.AggregationExpr       { return expr.Min(e) }
func Max(e Expr) *expr.AggregationExpr       { return expr.Max(e) }
func Sd(e Expr) *expr.AggregationExpr        { return expr.Sd(e) }
func Var(e Expr) *expr.AggregationExpr       { return expr.Var(e) }
func Count(e Expr) *expr.AggregationExpr     { return expr.Count(e) }
func NDistinct(e Expr) *expr.AggregationExpr { return expr.NDistinct(e) }
func First(e Expr) *expr.AggregationExpr     { return expr.First(e) }
func Last(e Expr) *expr.AggregationExpr      { return expr.Last(e) }

// N counts rows, including those with missing values.
func N() *expr.AggregationExpr { return expr.N() }

// Map applies fn to every row of the named columns. Use WithOptions on the
// result to run it on the worker pool.
func Map(columns []string, fn MapFunc) *expr.MapExpr { return expr.Map(columns, fn) }

// Fn1 adapts a typed one-argument function to a MapFunc.
func Fn1[A, R any](fn func(A) R) MapFunc { return expr.Fn1(fn) }

// Fn2 adapts a typed two-argument function to a MapFunc.
func Fn2[A, B, R any](fn func(A, B) R) MapFunc { return expr.Fn2(fn) }

// Fn3 adapts a typed three-argument function to a MapFunc.
func Fn3[A, B, C, R any](fn func(A, B, C) R) MapFunc { return expr.Fn3(fn) }

// Across applies fn to every selected column.
func Across(sel Selector, fn func(Expr) Expr, opts ...AcrossOption) *expr.AcrossExpr {
	return expr.Across(sel, fn, opts...)
}

func Prefix(prefix string) AcrossOption             { return expr.Prefix(prefix) }
func Suffix(suffix string) AcrossOption             { return expr.Suffix(suffix) }
func Names(fn func(col string) string) AcrossOption { return expr.Names(fn) }

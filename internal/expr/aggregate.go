package expr

import (
	"fmt"
	"math"
	"slices"

	"github.com/paveg/tidyframe/internal/common"
	"github.com/paveg/tidyframe/internal/series"
	"golang.org/x/exp/constraints"
)

// AggregationType represents the type of aggregation
type AggregationType int

const (
	AggSum AggregationType = iota
	AggMean
	AggMedian
	AggMin
	AggMax
	AggSd
	AggVar
	AggCount
	AggN
	AggNDistinct
	AggFirst
	AggLast
)

var aggregationNames = map[AggregationType]string{
	AggSum: "sum", AggMean: "mean", AggMedian: "median", AggMin: "min", AggMax: "max",
	AggSd: "sd", AggVar: "var", AggCount: "count", AggN: "n", AggNDistinct: "n_distinct",
	AggFirst: "first", AggLast: "last",
}

func (a AggregationType) String() string { return aggregationNames[a] }

// AggregationExpr reduces a column to a single value. Missing values are
// skipped except by n and n_distinct.
type AggregationExpr struct {
	column  Expr
	aggType AggregationType
}

func (a *AggregationExpr) Type() ExprType { return ExprAggregation }

func (a *AggregationExpr) String() string {
	if a.column == nil {
		return common.FormatFunction(a.aggType.String())
	}
	return common.FormatFunction(a.aggType.String(), a.column.String())
}

func (a *AggregationExpr) Column() Expr             { return a.column }
func (a *AggregationExpr) AggType() AggregationType { return a.aggType }

// Aggregate creates an aggregation over an expression.
func Aggregate(aggType AggregationType, column Expr) *AggregationExpr {
	return &AggregationExpr{column: column, aggType: aggType}
}

func Sum(column Expr) *AggregationExpr       { return Aggregate(AggSum, column) }
func Mean(column Expr) *AggregationExpr      { return Aggregate(AggMean, column) }
func Median(column Expr) *AggregationExpr    { return Aggregate(AggMedian, column) }
func Min(column Expr) *AggregationExpr       { return Aggregate(AggMin, column) }
func Max(column Expr) *AggregationExpr       { return Aggregate(AggMax, column) }
func Sd(column Expr) *AggregationExpr        { return Aggregate(AggSd, column) }
func Var(column Expr) *AggregationExpr       { return Aggregate(AggVar, column) }
func Count(column Expr) *AggregationExpr     { return Aggregate(AggCount, column) }
func NDistinct(column Expr) *AggregationExpr { return Aggregate(AggNDistinct, column) }
func First(column Expr) *AggregationExpr     { return Aggregate(AggFirst, column) }
func Last(column Expr) *AggregationExpr      { return Aggregate(AggLast, column) }

// N counts the rows of the frame or group.
func N() *AggregationExpr { return Aggregate(AggN, nil) }

// IsAggregation reports whether the expression reduces to a single value
// regardless of input length.
func IsAggregation(e Expr) bool {
	switch n := e.(type) {
	case *AggregationExpr:
		return true
	case *AliasExpr:
		return IsAggregation(n.expr)
	case *LiteralExpr:
		return true
	case *BinaryExpr:
		return IsAggregation(n.left) && IsAggregation(n.right)
	case *UnaryExpr:
		return IsAggregation(n.operand)
	case *FunctionExpr:
		for _, a := range n.args {
			if !IsAggregation(a) {
				return false
			}
		}
		return true
	}
	return false
}

func (e *Evaluator) evalAggregation(a *AggregationExpr, frame Frame) (*series.Series, error) {
	if a.aggType == AggN {
		return series.FromValues("n", []any{int64(frame.Len())}), nil
	}
	col, err := e.eval(a.column, frame)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s argument: %w", a.aggType, err)
	}
	return Reduce(a.aggType, col)
}

// Reduce applies an aggregation to a column, returning a single-row series.
func Reduce(aggType AggregationType, s *series.Series) (*series.Series, error) {
	name := s.Name()
	switch aggType {
	case AggN:
		return series.FromValues(name, []any{int64(s.Len())}), nil
	case AggCount:
		return series.FromValues(name, []any{int64(s.Len() - s.NullCount())}), nil
	case AggNDistinct:
		seen := make(map[string]bool)
		for i := 0; i < s.Len(); i++ {
			seen[s.Key(i)] = true
		}
		return series.FromValues(name, []any{int64(len(seen))}), nil
	case AggFirst, AggLast:
		if s.Len() == 0 {
			return s.Take([]int{-1}), nil
		}
		if aggType == AggFirst {
			return s.Take([]int{0}), nil
		}
		return s.Take([]int{s.Len() - 1}), nil
	case AggMin, AggMax:
		return extreme(aggType, s), nil
	}

	kind := s.Kind()
	if !kind.IsNumeric() && kind != series.KindNull {
		return nil, fmt.Errorf("%s requires a numeric column, %s is %s", aggType, name, kind)
	}

	if aggType == AggSum && kind != series.KindFloat {
		ints := nonMissing[int64](s, series.KindInt)
		return series.FromValues(name, []any{sumOf(ints)}), nil
	}

	floats := nonMissing[float64](s, series.KindFloat)
	var out any
	switch aggType {
	case AggSum:
		out = sumOf(floats)
	case AggMean:
		if len(floats) > 0 {
			out = sumOf(floats) / float64(len(floats))
		}
	case AggMedian:
		out = median(floats)
	case AggVar:
		out = variance(floats)
	case AggSd:
		if v, ok := variance(floats).(float64); ok {
			out = math.Sqrt(v)
		}
	default:
		return nil, fmt.Errorf("unsupported aggregation %s", aggType)
	}
	if out == nil {
		return series.Build(name, series.KindFloat, []any{nil})
	}
	return series.FromValues(name, []any{out}), nil
}

// nonMissing collects the non-missing values of s coerced to kind.
func nonMissing[T int64 | float64](s *series.Series, kind series.Kind) []T {
	out := make([]T, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		v := s.Value(i)
		if v == nil {
			continue
		}
		c, err := series.Coerce(v, kind)
		if err != nil {
			continue
		}
		out = append(out, c.(T))
	}
	return out
}

func sumOf[T constraints.Integer | constraints.Float](xs []T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}

func median[T constraints.Float](xs []T) any {
	if len(xs) == 0 {
		return nil
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// variance is the sample variance (n-1 denominator).
func variance[T constraints.Float](xs []T) any {
	if len(xs) < 2 {
		return nil
	}
	mean := sumOf(xs) / T(len(xs))
	var ss T
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return float64(ss / T(len(xs)-1))
}

// extreme returns the minimum or maximum non-missing row, keeping the
// column's kind. Categorical columns order by level.
func extreme(aggType AggregationType, s *series.Series) *series.Series {
	best := -1
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		c := s.Compare(i, best)
		if (aggType == AggMin && c < 0) || (aggType == AggMax && c > 0) {
			best = i
		}
	}
	return s.Take([]int{best})
}

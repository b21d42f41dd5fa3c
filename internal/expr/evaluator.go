package expr

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// Frame is the column source expressions are evaluated against.
type Frame interface {
	Column(name string) (*series.Series, bool)
	ColumnNames() []string
	Len() int
}

// Evaluator handles expression evaluation against a Frame
type Evaluator struct {
	mem memory.Allocator
}

// NewEvaluator creates a new expression evaluator
func NewEvaluator(mem memory.Allocator) *Evaluator {
	if mem == nil {
		mem = series.Allocator()
	}
	return &Evaluator{mem: mem}
}

// Evaluate evaluates an expression against the frame. The result either has
// the frame's length or, for aggregations and literals, length one; callers
// broadcast single values as needed. The result is named by OutputName.
func (e *Evaluator) Evaluate(ex Expr, frame Frame) (*series.Series, error) {
	s, err := e.eval(ex, frame)
	if err != nil {
		return nil, err
	}
	return s.Rename(OutputName(ex)), nil
}

// EvaluateN evaluates an expression and broadcasts a single-value result to
// the frame's length.
func (e *Evaluator) EvaluateN(ex Expr, frame Frame) (*series.Series, error) {
	s, err := e.Evaluate(ex, frame)
	if err != nil {
		return nil, err
	}
	return Broadcast(s, frame.Len())
}

func (e *Evaluator) eval(ex Expr, frame Frame) (*series.Series, error) {
	switch n := ex.(type) {
	case *ColumnExpr:
		col, ok := frame.Column(n.name)
		if !ok {
			return nil, errors.NewUnknownColumnError("evaluate", n.name, frame.ColumnNames())
		}
		return col, nil
	case *LiteralExpr:
		return literalSeries(n.value), nil
	case *BinaryExpr:
		return e.evalBinary(n, frame)
	case *UnaryExpr:
		return e.evalUnary(n, frame)
	case *FunctionExpr:
		return e.evalFunction(n, frame)
	case *AggregationExpr:
		return e.evalAggregation(n, frame)
	case *CaseExpr:
		return e.evalCase(n, frame)
	case *MapExpr:
		return e.evalMap(n, frame)
	case *AliasExpr:
		return e.eval(n.expr, frame)
	case *SortExpr:
		return e.eval(n.expr, frame)
	case *InvalidExpr:
		return nil, n.err
	case nil:
		return nil, fmt.Errorf("nil expression")
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", ex)
	}
}

func literalSeries(v any) *series.Series {
	if v == nil {
		return series.NewNull("literal", 1)
	}
	return series.FromValues("literal", []any{v})
}

// Broadcast repeats a single-value series to length n. Series already of
// length n are returned unchanged.
func Broadcast(s *series.Series, n int) (*series.Series, error) {
	switch s.Len() {
	case n:
		return s, nil
	case 1:
		return s.Repeat(0, n), nil
	}
	return nil, fmt.Errorf("%w: %s has %d rows, expected %d or 1", errors.ErrMismatchedLength, s.Name(), s.Len(), n)
}

// commonLength returns the length two operands combine to.
func commonLength(a, b *series.Series) (int, error) {
	switch {
	case a.Len() == b.Len():
		return a.Len(), nil
	case a.Len() == 1:
		return b.Len(), nil
	case b.Len() == 1:
		return a.Len(), nil
	}
	return 0, fmt.Errorf("%w: operands have %d and %d rows", errors.ErrMismatchedLength, a.Len(), b.Len())
}

// at maps an output row to an operand row, honoring broadcast.
func at(s *series.Series, i int) int {
	if s.Len() == 1 {
		return 0
	}
	return i
}

func (e *Evaluator) evalBinary(b *BinaryExpr, frame Frame) (*series.Series, error) {
	left, err := e.eval(b.left, frame)
	if err != nil {
		return nil, fmt.Errorf("evaluating left operand: %w", err)
	}
	right, err := e.eval(b.right, frame)
	if err != nil {
		return nil, fmt.Errorf("evaluating right operand: %w", err)
	}
	n, err := commonLength(left, right)
	if err != nil {
		return nil, err
	}

	switch {
	case b.op.isArithmetic():
		return e.arithmetic(b.op, left, right, n)
	case b.op.isComparison():
		return e.compare(b.op, left, right, n)
	default:
		return e.logical(b.op, left, right, n)
	}
}

func (e *Evaluator) arithmetic(op BinaryOp, left, right *series.Series, n int) (*series.Series, error) {
	lk, rk := left.Kind(), right.Kind()

	if op == OpAdd && (isText(lk) || isText(rk)) {
		if !(isText(lk) || lk == series.KindNull) || !(isText(rk) || rk == series.KindNull) {
			return nil, fmt.Errorf("cannot add %s and %s", lk, rk)
		}
		out := make([]any, n)
		for i := range out {
			l, r := left.Value(at(left, i)), right.Value(at(right, i))
			if l != nil && r != nil {
				out[i] = l.(string) + r.(string)
			}
		}
		return series.Build("", series.KindString, out)
	}

	kind, ok := series.Supertype(lk, rk, false)
	if !ok || !(kind.IsNumeric() || kind == series.KindNull) {
		return nil, fmt.Errorf("arithmetic %s not supported between %s and %s", op, lk, rk)
	}
	if kind == series.KindBool {
		kind = series.KindInt
	}
	if op == OpDiv {
		kind = series.KindFloat
	}
	if kind == series.KindNull {
		return series.NewNull("", n), nil
	}

	if fast := e.arithmeticFast(op, left, right, n, kind); fast != nil {
		return fast, nil
	}

	out := make([]any, n)
	for i := range out {
		l, r := left.Value(at(left, i)), right.Value(at(right, i))
		if l == nil || r == nil {
			continue
		}
		if kind == series.KindInt {
			li, _ := series.Coerce(l, series.KindInt)
			ri, _ := series.Coerce(r, series.KindInt)
			out[i] = intOp(op, li.(int64), ri.(int64))
			continue
		}
		lf, _ := series.ToFloat64(l)
		rf, _ := series.ToFloat64(r)
		out[i] = floatOp(op, lf, rf)
	}
	return series.Build("", kind, out)
}

// arithmeticFast handles equal-length float64 operands without missing
// values directly on the Arrow buffers. Division and modulo are excluded
// because a zero divisor yields a missing value.
func (e *Evaluator) arithmeticFast(op BinaryOp, left, right *series.Series, n int, kind series.Kind) *series.Series {
	if kind != series.KindFloat || left.Len() != n || right.Len() != n ||
		left.NullCount() > 0 || right.NullCount() > 0 || op == OpDiv || op == OpMod {
		return nil
	}
	la, ok1 := left.Array().(*array.Float64)
	ra, ok2 := right.Array().(*array.Float64)
	if !ok1 || !ok2 {
		return nil
	}
	lv, rv := la.Float64Values(), ra.Float64Values()
	out := make([]float64, n)
	for i := range out {
		out[i] = floatOp(op, lv[i], rv[i]).(float64)
	}
	return series.New("", out, e.mem)
}

func intOp(op BinaryOp, l, r int64) any {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpMod:
		if r == 0 {
			return nil
		}
		return l % r
	}
	return nil
}

func floatOp(op BinaryOp, l, r float64) any {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		if r == 0 {
			return nil
		}
		return l / r
	case OpMod:
		if r == 0 {
			return nil
		}
		return math.Mod(l, r)
	}
	return nil
}

func isText(k series.Kind) bool {
	return k == series.KindString || k == series.KindCategorical
}

func (e *Evaluator) compare(op BinaryOp, left, right *series.Series, n int) (*series.Series, error) {
	lk, rk := left.Kind(), right.Kind()
	if lk == series.KindNull || rk == series.KindNull {
		return series.Build("", series.KindBool, make([]any, n))
	}

	ordered := op != OpEq && op != OpNe
	var rank func(s *series.Series, i int) (any, bool)

	switch {
	case lk.IsNumeric() && rk.IsNumeric():
		rank = func(s *series.Series, i int) (any, bool) { return s.Value(i), true }
	case lk == series.KindCategorical && ordered:
		rank = levelRank(left)
	case rk == series.KindCategorical && ordered:
		rank = levelRank(right)
	case isText(lk) && isText(rk):
		rank = func(s *series.Series, i int) (any, bool) { return s.Value(i), true }
	case lk == series.KindObject && rk == series.KindObject && !ordered:
		rank = func(s *series.Series, i int) (any, bool) { return series.FormatValue(s.Value(i)), true }
	default:
		return nil, fmt.Errorf("cannot compare %s with %s", lk, rk)
	}

	out := make([]any, n)
	for i := range out {
		li, ri := at(left, i), at(right, i)
		if left.IsNull(li) || right.IsNull(ri) {
			continue
		}
		lv, lok := rank(left, li)
		rv, rok := rank(right, ri)
		if !lok || !rok {
			continue
		}
		c := series.CompareValues(lv, rv)
		switch op {
		case OpEq:
			out[i] = c == 0
		case OpNe:
			out[i] = c != 0
		case OpLt:
			out[i] = c < 0
		case OpLe:
			out[i] = c <= 0
		case OpGt:
			out[i] = c > 0
		case OpGe:
			out[i] = c >= 0
		}
	}
	return series.Build("", series.KindBool, out)
}

// levelRank ranks string values by the level order of a categorical column,
// so ordered comparisons against plain strings follow the factor order.
// Strings that are not levels compare as missing.
func levelRank(cat *series.Series) func(*series.Series, int) (any, bool) {
	index := make(map[string]int)
	for i, l := range cat.Levels() {
		index[l] = i
	}
	return func(s *series.Series, i int) (any, bool) {
		str, ok := s.Value(i).(string)
		if !ok {
			return nil, false
		}
		pos, ok := index[str]
		return int64(pos), ok
	}
}

// logical implements Kleene three-valued AND and OR.
func (e *Evaluator) logical(op BinaryOp, left, right *series.Series, n int) (*series.Series, error) {
	if err := requireBool(left); err != nil {
		return nil, err
	}
	if err := requireBool(right); err != nil {
		return nil, err
	}

	out := make([]any, n)
	for i := range out {
		l, r := left.Value(at(left, i)), right.Value(at(right, i))
		lb, lok := l.(bool)
		rb, rok := r.(bool)
		switch op {
		case OpAnd:
			switch {
			case (lok && !lb) || (rok && !rb):
				out[i] = false
			case lok && rok:
				out[i] = true
			}
		case OpOr:
			switch {
			case (lok && lb) || (rok && rb):
				out[i] = true
			case lok && rok:
				out[i] = false
			}
		}
	}
	return series.Build("", series.KindBool, out)
}

func requireBool(s *series.Series) error {
	if k := s.Kind(); k != series.KindBool && k != series.KindNull {
		return fmt.Errorf("expected a boolean expression, got %s", k)
	}
	return nil
}

func (e *Evaluator) evalUnary(u *UnaryExpr, frame Frame) (*series.Series, error) {
	operand, err := e.eval(u.operand, frame)
	if err != nil {
		return nil, fmt.Errorf("evaluating operand: %w", err)
	}

	n := operand.Len()
	out := make([]any, n)
	switch u.op {
	case UnaryIsNull, UnaryIsNotNull:
		for i := range out {
			out[i] = operand.IsNull(i) == (u.op == UnaryIsNull)
		}
		return series.Build("", series.KindBool, out)
	case UnaryNot:
		if err := requireBool(operand); err != nil {
			return nil, err
		}
		for i := range out {
			if b, ok := operand.Value(i).(bool); ok {
				out[i] = !b
			}
		}
		return series.Build("", series.KindBool, out)
	case UnaryNeg:
		kind := operand.Kind()
		if !kind.IsNumeric() && kind != series.KindNull {
			return nil, fmt.Errorf("cannot negate %s", kind)
		}
		if kind == series.KindBool {
			kind = series.KindInt
		}
		for i := range out {
			v := operand.Value(i)
			if v == nil {
				continue
			}
			c, _ := series.Coerce(v, kind)
			switch x := c.(type) {
			case int64:
				out[i] = -x
			case float64:
				out[i] = -x
			}
		}
		return series.Build("", kind, out)
	}
	return nil, fmt.Errorf("unsupported unary operator %s", u.op)
}

// Package expr provides deferred column expressions and their evaluation.
//
// Expressions are schema-agnostic trees built from column references,
// literals, operators, functions, aggregations, conditionals and row-wise
// functions. They are evaluated against a Frame when a verb is applied, so
// references to absent columns surface as errors at that point and the same
// expression can be reused against any number of tables.
package expr

import (
	"github.com/paveg/tidyframe/internal/common"
	"github.com/paveg/tidyframe/internal/series"
)

// ExprType represents the type of expression
type ExprType int

const (
	ExprColumn ExprType = iota
	ExprLiteral
	ExprBinary
	ExprUnary
	ExprFunction
	ExprAggregation
	ExprCase
	ExprMap
	ExprAlias
	ExprSort
	ExprInvalid
)

// Expr represents an expression that can be evaluated lazily
type Expr interface {
	Type() ExprType
	String() string
}

// ColumnExpr represents a column reference
type ColumnExpr struct {
	name string
}

func (c *ColumnExpr) Type() ExprType { return ExprColumn }

func (c *ColumnExpr) String() string { return common.FormatFunction("col", c.name) }

// Name returns the referenced column name.
func (c *ColumnExpr) Name() string { return c.name }

// LiteralExpr represents a literal value
type LiteralExpr struct {
	value any
}

func (l *LiteralExpr) Type() ExprType { return ExprLiteral }

func (l *LiteralExpr) String() string {
	return common.FormatFunction("lit", common.FormatLiteral(l.value))
}

// Value returns the literal in its canonical representation.
func (l *LiteralExpr) Value() any { return l.value }

// BinaryOp represents binary operations
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAnd: "&&", OpOr: "||",
}

func (op BinaryOp) String() string { return binaryOpSymbols[op] }

func (op BinaryOp) isArithmetic() bool { return op <= OpMod }

func (op BinaryOp) isComparison() bool { return op >= OpEq && op <= OpGe }

// BinaryExpr represents a binary operation
type BinaryExpr struct {
	left  Expr
	op    BinaryOp
	right Expr
}

func (b *BinaryExpr) Type() ExprType { return ExprBinary }

func (b *BinaryExpr) String() string {
	return common.FormatBinaryOperation(b.left.String(), b.op.String(), b.right.String())
}

func (b *BinaryExpr) Left() Expr   { return b.left }
func (b *BinaryExpr) Op() BinaryOp { return b.op }
func (b *BinaryExpr) Right() Expr  { return b.right }

// UnaryOp represents unary operations
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryIsNull
	UnaryIsNotNull
)

var unaryOpNames = map[UnaryOp]string{
	UnaryNeg: "neg", UnaryNot: "not", UnaryIsNull: "is_null", UnaryIsNotNull: "is_not_null",
}

func (op UnaryOp) String() string { return unaryOpNames[op] }

// UnaryExpr represents a unary operation
type UnaryExpr struct {
	op      UnaryOp
	operand Expr
}

func (u *UnaryExpr) Type() ExprType { return ExprUnary }

func (u *UnaryExpr) String() string {
	return common.FormatUnaryOperation(u.op.String(), u.operand.String())
}

func (u *UnaryExpr) Op() UnaryOp   { return u.op }
func (u *UnaryExpr) Operand() Expr { return u.operand }

// FunctionExpr represents a named scalar function call
type FunctionExpr struct {
	name string
	args []Expr
}

func (f *FunctionExpr) Type() ExprType { return ExprFunction }

func (f *FunctionExpr) String() string {
	args := make([]string, len(f.args))
	for i, a := range f.args {
		args[i] = a.String()
	}
	return common.FormatFunction(f.name, args...)
}

func (f *FunctionExpr) Name() string { return f.name }
func (f *FunctionExpr) Args() []Expr { return f.args }

// AliasExpr binds an output name to an expression
type AliasExpr struct {
	expr Expr
	name string
}

func (a *AliasExpr) Type() ExprType { return ExprAlias }

func (a *AliasExpr) String() string { return a.expr.String() + " as " + a.name }

func (a *AliasExpr) Expr() Expr   { return a.expr }
func (a *AliasExpr) Name() string { return a.name }

// SortExpr marks a sort key direction for arrange
type SortExpr struct {
	expr Expr
	desc bool
}

func (s *SortExpr) Type() ExprType { return ExprSort }

func (s *SortExpr) String() string {
	if s.desc {
		return common.FormatFunction("desc", s.expr.String())
	}
	return s.expr.String()
}

// InvalidExpr carries a construction error to evaluation time
type InvalidExpr struct {
	err error
}

func (i *InvalidExpr) Type() ExprType { return ExprInvalid }

func (i *InvalidExpr) String() string { return common.FormatFunction("invalid", i.err.Error()) }

// Err returns the construction error.
func (i *InvalidExpr) Err() error { return i.err }

// Col creates a column reference expression
func Col(name string) *ColumnExpr {
	return &ColumnExpr{name: name}
}

// Lit creates a literal expression. Go integers and floats are widened to
// int64 and float64.
func Lit(value any) *LiteralExpr {
	if kind := series.KindOf(value); kind != series.KindObject && kind != series.KindNull {
		if v, err := series.Coerce(value, kind); err == nil {
			value = v
		}
	}
	return &LiteralExpr{value: value}
}

// Binary creates a binary expression.
func Binary(left Expr, op BinaryOp, right Expr) *BinaryExpr {
	return &BinaryExpr{left: left, op: op, right: right}
}

// Unary creates a unary expression.
func Unary(op UnaryOp, operand Expr) *UnaryExpr {
	return &UnaryExpr{op: op, operand: operand}
}

// Function creates a named function call. Unknown names fail at evaluation.
func Function(name string, args ...Expr) *FunctionExpr {
	return &FunctionExpr{name: name, args: args}
}

// Alias binds an output name to an expression.
func Alias(e Expr, name string) *AliasExpr {
	return &AliasExpr{expr: e, name: name}
}

// Desc marks an arrange key as descending.
func Desc(e Expr) *SortExpr {
	return &SortExpr{expr: e, desc: true}
}

// Invalid wraps a construction error as an expression.
func Invalid(err error) *InvalidExpr {
	return &InvalidExpr{err: err}
}

// SortKey strips a direction marker, reporting whether the key is descending.
func SortKey(e Expr) (Expr, bool) {
	if s, ok := e.(*SortExpr); ok {
		return s.expr, s.desc
	}
	return e, false
}

// Column expression chaining

func (c *ColumnExpr) Add(other Expr) *BinaryExpr { return Binary(c, OpAdd, other) }
func (c *ColumnExpr) Sub(other Expr) *BinaryExpr { return Binary(c, OpSub, other) }
func (c *ColumnExpr) Mul(other Expr) *BinaryExpr { return Binary(c, OpMul, other) }
func (c *ColumnExpr) Div(other Expr) *BinaryExpr { return Binary(c, OpDiv, other) }
func (c *ColumnExpr) Eq(other Expr) *BinaryExpr  { return Binary(c, OpEq, other) }
func (c *ColumnExpr) Ne(other Expr) *BinaryExpr  { return Binary(c, OpNe, other) }
func (c *ColumnExpr) Lt(other Expr) *BinaryExpr  { return Binary(c, OpLt, other) }
func (c *ColumnExpr) Le(other Expr) *BinaryExpr  { return Binary(c, OpLe, other) }
func (c *ColumnExpr) Gt(other Expr) *BinaryExpr  { return Binary(c, OpGt, other) }
func (c *ColumnExpr) Ge(other Expr) *BinaryExpr  { return Binary(c, OpGe, other) }

// Binary expression chaining

func (b *BinaryExpr) And(other Expr) *BinaryExpr { return Binary(b, OpAnd, other) }
func (b *BinaryExpr) Or(other Expr) *BinaryExpr  { return Binary(b, OpOr, other) }
func (b *BinaryExpr) Add(other Expr) *BinaryExpr { return Binary(b, OpAdd, other) }
func (b *BinaryExpr) Mul(other Expr) *BinaryExpr { return Binary(b, OpMul, other) }

// OutputName returns the default name of an expression's result: the bound
// alias if any, otherwise the left-most referenced column, otherwise
// "literal".
func OutputName(e Expr) string {
	if a, ok := e.(*AliasExpr); ok {
		return a.name
	}
	if name, ok := firstColumn(e); ok {
		return name
	}
	if agg, ok := e.(*AggregationExpr); ok && agg.column == nil {
		return agg.aggType.String()
	}
	return "literal"
}

func firstColumn(e Expr) (string, bool) {
	switch n := e.(type) {
	case *ColumnExpr:
		return n.name, true
	case *AliasExpr:
		return n.name, true
	case *BinaryExpr:
		if name, ok := firstColumn(n.left); ok {
			return name, true
		}
		return firstColumn(n.right)
	case *UnaryExpr:
		return firstColumn(n.operand)
	case *FunctionExpr:
		for _, a := range n.args {
			if name, ok := firstColumn(a); ok {
				return name, true
			}
		}
	case *AggregationExpr:
		if n.column != nil {
			return firstColumn(n.column)
		}
	case *CaseExpr:
		for _, w := range n.whens {
			if name, ok := firstColumn(w.Condition); ok {
				return name, true
			}
			if name, ok := firstColumn(w.Value); ok {
				return name, true
			}
		}
		if n.otherwise != nil {
			return firstColumn(n.otherwise)
		}
	case *MapExpr:
		if len(n.columns) > 0 {
			return n.columns[0], true
		}
	case *SortExpr:
		return firstColumn(n.expr)
	}
	return "", false
}

// Columns returns every column name the expression references, in first
// appearance order.
func Columns(e Expr) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Expr)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	walk = func(e Expr) {
		switch n := e.(type) {
		case *ColumnExpr:
			add(n.name)
		case *BinaryExpr:
			walk(n.left)
			walk(n.right)
		case *UnaryExpr:
			walk(n.operand)
		case *FunctionExpr:
			for _, a := range n.args {
				walk(a)
			}
		case *AggregationExpr:
			if n.column != nil {
				walk(n.column)
			}
		case *CaseExpr:
			for _, w := range n.whens {
				walk(w.Condition)
				walk(w.Value)
			}
			if n.otherwise != nil {
				walk(n.otherwise)
			}
		case *MapExpr:
			for _, c := range n.columns {
				add(c)
			}
		case *AliasExpr:
			walk(n.expr)
		case *SortExpr:
			walk(n.expr)
		}
	}
	walk(e)
	return out
}

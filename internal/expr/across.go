package expr

import (
	"github.com/paveg/tidyframe/internal/common"
	"github.com/paveg/tidyframe/internal/errors"
)

// Arg is one argument to mutate: a single assignment or a family of
// assignments generated over selected columns.
type Arg interface {
	Expand(f Frame) ([]Assignment, error)
}

// Assignment binds an expression's result to an output column. Source is
// the column an across() assignment was generated from, if any.
type Assignment struct {
	Name   string
	Expr   Expr
	Source string
}

// Assign creates a named assignment.
func Assign(name string, e Expr) Assignment {
	return Assignment{Name: name, Expr: e}
}

func (a Assignment) Expand(Frame) ([]Assignment, error) {
	return []Assignment{a}, nil
}

func (a Assignment) String() string { return a.Name + " = " + a.Expr.String() }

// AcrossOption customizes the output names of an across() expansion.
type AcrossOption func(*AcrossExpr)

// Prefix prepends prefix to each generated column name.
func Prefix(prefix string) AcrossOption {
	return func(a *AcrossExpr) {
		prev := a.naming
		a.naming = func(col string) string { return prefix + prev(col) }
	}
}

// Suffix appends suffix to each generated column name.
func Suffix(suffix string) AcrossOption {
	return func(a *AcrossExpr) {
		prev := a.naming
		a.naming = func(col string) string { return prev(col) + suffix }
	}
}

// Names replaces the naming function entirely.
func Names(fn func(col string) string) AcrossOption {
	return func(a *AcrossExpr) { a.naming = fn }
}

// AcrossExpr applies one expression template to every selected column.
// Without naming options the results replace the source columns.
type AcrossExpr struct {
	sel    Selector
	fn     func(Expr) Expr
	naming func(string) string
}

// Across creates an across() argument. fn receives a column reference for
// each selected column and returns the expression to assign.
func Across(sel Selector, fn func(Expr) Expr, opts ...AcrossOption) *AcrossExpr {
	a := &AcrossExpr{sel: sel, fn: fn, naming: func(col string) string { return col }}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AcrossExpr) String() string {
	return common.FormatFunction("across", a.sel.String())
}

// Expand resolves the selector and generates one assignment per column. A
// generated name may replace its own source column but not another
// existing column, and no two generated names may coincide.
func (a *AcrossExpr) Expand(f Frame) ([]Assignment, error) {
	cols, err := ResolveAll("across", f, a.sel)
	if err != nil {
		return nil, err
	}
	out := make([]Assignment, 0, len(cols))
	generated := make(map[string]bool, len(cols))
	for _, col := range cols {
		name := a.naming(col)
		if generated[name] {
			return nil, errors.NewColumnNameCollisionError("across", name)
		}
		if _, exists := f.Column(name); exists && name != col {
			return nil, errors.NewColumnNameCollisionError("across", name)
		}
		generated[name] = true
		out = append(out, Assignment{Name: name, Expr: a.fn(Col(col)), Source: col})
	}
	return out, nil
}

// Expand lets an aliased expression be passed directly as a mutate or
// summarise argument.
func (a *AliasExpr) Expand(Frame) ([]Assignment, error) {
	return []Assignment{{Name: a.name, Expr: a.expr}}, nil
}

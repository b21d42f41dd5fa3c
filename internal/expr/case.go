package expr

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/common"
	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// CaseWhen represents a single WHEN clause in a CASE expression
type CaseWhen struct {
	Condition Expr
	Value     Expr
}

// CaseExpr selects, per row, the value of the first clause whose condition
// holds. Rows no clause matches take the otherwise value, or are missing
// when there is none.
type CaseExpr struct {
	whens     []CaseWhen
	otherwise Expr
}

func (c *CaseExpr) Type() ExprType { return ExprCase }

func (c *CaseExpr) String() string {
	args := make([]string, 0, 2*len(c.whens)+1)
	for _, w := range c.whens {
		args = append(args, w.Condition.String(), w.Value.String())
	}
	if c.otherwise != nil {
		args = append(args, "otherwise="+c.otherwise.String())
	}
	return common.FormatFunction("case_when", args...)
}

// Whens returns the clauses in priority order.
func (c *CaseExpr) Whens() []CaseWhen { return append([]CaseWhen(nil), c.whens...) }

// OtherwiseValue returns the default value, or nil.
func (c *CaseExpr) OtherwiseValue() Expr { return c.otherwise }

// NewCaseWhen builds a case expression from alternating condition/value
// arguments. An empty or odd-length argument list is malformed.
func NewCaseWhen(args ...Expr) (*CaseExpr, error) {
	if len(args) == 0 {
		return nil, errors.NewMalformedCaseError(0, "at least one condition/value pair is required")
	}
	if len(args)%2 != 0 {
		return nil, errors.NewMalformedCaseError(len(args), "condition without a value")
	}
	c := &CaseExpr{}
	for i := 0; i < len(args); i += 2 {
		c.whens = append(c.whens, CaseWhen{Condition: args[i], Value: args[i+1]})
	}
	return c, nil
}

// Case starts a case expression with its first clause; further clauses
// are added with When. Taking the first clause here means a fluent case
// expression always has at least one condition/value pair.
func Case(condition, value Expr) *CaseExpr {
	return &CaseExpr{whens: []CaseWhen{{Condition: condition, Value: value}}}
}

// When returns a copy of the case expression with one more clause.
func (c *CaseExpr) When(condition, value Expr) *CaseExpr {
	whens := make([]CaseWhen, len(c.whens), len(c.whens)+1)
	copy(whens, c.whens)
	return &CaseExpr{whens: append(whens, CaseWhen{Condition: condition, Value: value}), otherwise: c.otherwise}
}

// Otherwise returns a copy of the case expression with a default value.
func (c *CaseExpr) Otherwise(value Expr) *CaseExpr {
	return &CaseExpr{whens: c.whens, otherwise: value}
}

func (e *Evaluator) evalCase(c *CaseExpr, frame Frame) (*series.Series, error) {
	if len(c.whens) == 0 {
		return nil, errors.NewMalformedCaseError(0, "at least one condition/value pair is required")
	}

	n := 1
	conds := make([]*series.Series, len(c.whens))
	values := make([]*series.Series, 0, len(c.whens)+1)
	track := func(s *series.Series) error {
		if s.Len() == 1 {
			return nil
		}
		if n != 1 && n != s.Len() {
			return fmt.Errorf("case_when: branches have %d and %d rows", n, s.Len())
		}
		n = s.Len()
		return nil
	}

	for i, w := range c.whens {
		cond, err := e.eval(w.Condition, frame)
		if err != nil {
			return nil, fmt.Errorf("evaluating case_when condition %d: %w", i+1, err)
		}
		if err := requireBool(cond); err != nil {
			return nil, fmt.Errorf("case_when condition %d: %w", i+1, err)
		}
		val, err := e.eval(w.Value, frame)
		if err != nil {
			return nil, fmt.Errorf("evaluating case_when value %d: %w", i+1, err)
		}
		if err := track(cond); err != nil {
			return nil, err
		}
		if err := track(val); err != nil {
			return nil, err
		}
		conds[i] = cond
		values = append(values, val)
	}
	if c.otherwise != nil {
		val, err := e.eval(c.otherwise, frame)
		if err != nil {
			return nil, fmt.Errorf("evaluating case_when default: %w", err)
		}
		if err := track(val); err != nil {
			return nil, err
		}
		values = append(values, val)
	}

	kinds := make([]series.Kind, len(values))
	for i, v := range values {
		kinds[i] = v.Kind()
	}
	kind, pair, ok := series.CommonKind(kinds, true)
	if !ok {
		return nil, errors.NewCaseTypeMismatchError(pair[0].String(), pair[1].String())
	}

	out := make([]any, n)
	for row := range out {
		matched := false
		for i, cond := range conds {
			if b, ok := cond.Value(at(cond, row)).(bool); ok && b {
				out[row] = values[i].Value(at(values[i], row))
				matched = true
				break
			}
		}
		if !matched && c.otherwise != nil {
			def := values[len(values)-1]
			out[row] = def.Value(at(def, row))
		}
	}
	return buildKind(kind, out, values)
}

package expr

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/paveg/tidyframe/internal/series"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// functionImpl evaluates a function over its already evaluated arguments.
// Each argument has length n or 1; single values apply to every row.
type functionImpl func(args []*series.Series, n int) (*series.Series, error)

type functionSpec struct {
	minArgs, maxArgs int // maxArgs < 0 means variadic
	impl             functionImpl
}

var functions map[string]functionSpec

func init() {
	functions = map[string]functionSpec{
		"str_detect":      {2, 2, strDetect},
		"str_replace":     {3, 3, strReplace(false)},
		"str_replace_all": {3, 3, strReplace(true)},
		"str_to_upper":    {1, 1, caseMapper(func() cases.Caser { return cases.Upper(language.Und) })},
		"str_to_lower":    {1, 1, caseMapper(func() cases.Caser { return cases.Lower(language.Und) })},
		"str_to_title":    {1, 1, caseMapper(func() cases.Caser { return cases.Title(language.Und) })},
		"str_trim":        {1, 1, mapString(strings.TrimSpace)},
		"str_length":      {1, 1, strLength},
		"str_starts":      {2, 2, strAffix(strings.HasPrefix)},
		"str_ends":        {2, 2, strAffix(strings.HasSuffix)},
		"str_sub":         {3, 3, strSub},
		"str_c":           {2, -1, strC},
		"abs":             {1, 1, mapFloatKeepInt(math.Abs)},
		"sqrt":            {1, 1, mapFloat(math.Sqrt)},
		"log":             {1, 1, mapFloat(math.Log)},
		"exp":             {1, 1, mapFloat(math.Exp)},
		"floor":           {1, 1, mapFloatKeepInt(math.Floor)},
		"ceil":            {1, 1, mapFloatKeepInt(math.Ceil)},
		"round":           {1, 2, round},
		"coalesce":        {1, -1, coalesce},
		"if_else":         {3, 3, ifElse},
		"is_in":           {1, -1, isIn},
		"between":         {3, 3, between},
		"cast":            {2, 2, cast},
	}
}

// Fn creates a call to a registered scalar function.
func Fn(name string, args ...Expr) *FunctionExpr { return Function(name, args...) }

// IfElse selects yes where cond is true and no where it is false. Missing
// conditions yield missing values.
func IfElse(cond, yes, no Expr) *FunctionExpr { return Function("if_else", cond, yes, no) }

// Coalesce returns, per row, the first non-missing argument.
func Coalesce(args ...Expr) *FunctionExpr { return Function("coalesce", args...) }

// IsIn tests membership of each value in a literal set.
func IsIn(e Expr, values ...any) *FunctionExpr {
	args := []Expr{e}
	for _, v := range values {
		args = append(args, Lit(v))
	}
	return Function("is_in", args...)
}

// Cast converts an expression to the named kind: "bool", "int", "float",
// "string" or "categorical".
func Cast(e Expr, kind series.Kind) *FunctionExpr {
	return Function("cast", e, Lit(kind.String()))
}

// StrC concatenates string expressions row-wise with a separator.
func StrC(sep string, args ...Expr) *FunctionExpr {
	return Function("str_c", append([]Expr{Lit(sep)}, args...)...)
}

func (e *Evaluator) evalFunction(f *FunctionExpr, frame Frame) (*series.Series, error) {
	spec, ok := functions[f.name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", f.name)
	}
	if len(f.args) < spec.minArgs || (spec.maxArgs >= 0 && len(f.args) > spec.maxArgs) {
		return nil, fmt.Errorf("%s: wrong number of arguments (%d)", f.name, len(f.args))
	}

	args := make([]*series.Series, len(f.args))
	n := 1
	for i, a := range f.args {
		s, err := e.eval(a, frame)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s argument %d: %w", f.name, i+1, err)
		}
		args[i] = s
		if s.Len() != 1 {
			if n != 1 && n != s.Len() {
				return nil, fmt.Errorf("%s: arguments have %d and %d rows", f.name, n, s.Len())
			}
			n = s.Len()
		}
	}

	out, err := spec.impl(args, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	return out, nil
}

// scalarString reads a single-valued string argument such as a pattern.
func scalarString(s *series.Series, what string) (string, error) {
	if s.Len() != 1 {
		return "", fmt.Errorf("%s must be a single value", what)
	}
	str, ok := s.Value(0).(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", what, s.Value(0))
	}
	return str, nil
}

func requireText(s *series.Series) error {
	if k := s.Kind(); !isText(k) && k != series.KindNull {
		return fmt.Errorf("expected a string column, %s is %s", s.Name(), k)
	}
	return nil
}

func mapString(fn func(string) string) functionImpl {
	return func(args []*series.Series, n int) (*series.Series, error) {
		x := args[0]
		if err := requireText(x); err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			if v, ok := x.Value(at(x, i)).(string); ok {
				out[i] = fn(v)
			}
		}
		return series.Build("", series.KindString, out)
	}
}

// caseMapper builds a fresh Caser per evaluation since Casers are stateful.
func caseMapper(newCaser func() cases.Caser) functionImpl {
	return func(args []*series.Series, n int) (*series.Series, error) {
		c := newCaser()
		return mapString(c.String)(args, n)
	}
}

func strDetect(args []*series.Series, n int) (*series.Series, error) {
	x := args[0]
	if err := requireText(x); err != nil {
		return nil, err
	}
	pattern, err := scalarString(args[1], "pattern")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	out := make([]any, n)
	for i := range out {
		if v, ok := x.Value(at(x, i)).(string); ok {
			out[i] = re.MatchString(v)
		}
	}
	return series.Build("", series.KindBool, out)
}

func strReplace(all bool) functionImpl {
	return func(args []*series.Series, n int) (*series.Series, error) {
		x := args[0]
		if err := requireText(x); err != nil {
			return nil, err
		}
		pattern, err := scalarString(args[1], "pattern")
		if err != nil {
			return nil, err
		}
		replacement, err := scalarString(args[2], "replacement")
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		out := make([]any, n)
		for i := range out {
			v, ok := x.Value(at(x, i)).(string)
			if !ok {
				continue
			}
			if all {
				out[i] = re.ReplaceAllString(v, replacement)
				continue
			}
			if loc := re.FindStringSubmatchIndex(v); loc != nil {
				var dst []byte
				dst = re.ExpandString(dst, replacement, v, loc)
				out[i] = v[:loc[0]] + string(dst) + v[loc[1]:]
			} else {
				out[i] = v
			}
		}
		return series.Build("", series.KindString, out)
	}
}

func strLength(args []*series.Series, n int) (*series.Series, error) {
	x := args[0]
	if err := requireText(x); err != nil {
		return nil, err
	}
	out := make([]any, n)
	for i := range out {
		if v, ok := x.Value(at(x, i)).(string); ok {
			out[i] = int64(utf8.RuneCountInString(v))
		}
	}
	return series.Build("", series.KindInt, out)
}

func strAffix(test func(s, affix string) bool) functionImpl {
	return func(args []*series.Series, n int) (*series.Series, error) {
		x := args[0]
		if err := requireText(x); err != nil {
			return nil, err
		}
		affix, err := scalarString(args[1], "affix")
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			if v, ok := x.Value(at(x, i)).(string); ok {
				out[i] = test(v, affix)
			}
		}
		return series.Build("", series.KindBool, out)
	}
}

// strSub extracts characters start..end (1-based, inclusive). Negative
// positions count from the end of the string.
func strSub(args []*series.Series, n int) (*series.Series, error) {
	x := args[0]
	if err := requireText(x); err != nil {
		return nil, err
	}
	out := make([]any, n)
	for i := range out {
		v, ok := x.Value(at(x, i)).(string)
		start, sok := args[1].Value(at(args[1], i)).(int64)
		end, eok := args[2].Value(at(args[2], i)).(int64)
		if !ok || !sok || !eok {
			continue
		}
		runes := []rune(v)
		l := int64(len(runes))
		if start < 0 {
			start = l + start + 1
		}
		if end < 0 {
			end = l + end + 1
		}
		start = max(start, 1)
		end = min(end, l)
		if start > end {
			out[i] = ""
			continue
		}
		out[i] = string(runes[start-1 : end])
	}
	return series.Build("", series.KindString, out)
}

func strC(args []*series.Series, n int) (*series.Series, error) {
	sep, err := scalarString(args[0], "separator")
	if err != nil {
		return nil, err
	}
	out := make([]any, n)
rows:
	for i := range out {
		parts := make([]string, 0, len(args)-1)
		for _, a := range args[1:] {
			v := a.Value(at(a, i))
			if v == nil {
				continue rows
			}
			parts = append(parts, series.FormatValue(v))
		}
		out[i] = strings.Join(parts, sep)
	}
	return series.Build("", series.KindString, out)
}

func requireNumeric(s *series.Series) error {
	if k := s.Kind(); !k.IsNumeric() && k != series.KindNull {
		return fmt.Errorf("expected a numeric column, %s is %s", s.Name(), k)
	}
	return nil
}

func mapFloat(fn func(float64) float64) functionImpl {
	return func(args []*series.Series, n int) (*series.Series, error) {
		x := args[0]
		if err := requireNumeric(x); err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			if f, ok := series.ToFloat64(x.Value(at(x, i))); ok {
				if r := fn(f); !math.IsNaN(r) {
					out[i] = r
				}
			}
		}
		return series.Build("", series.KindFloat, out)
	}
}

// mapFloatKeepInt applies fn, returning integers unchanged in kind.
func mapFloatKeepInt(fn func(float64) float64) functionImpl {
	asFloat := mapFloat(fn)
	return func(args []*series.Series, n int) (*series.Series, error) {
		out, err := asFloat(args, n)
		if err != nil || args[0].Kind() != series.KindInt {
			return out, err
		}
		return out.Cast(series.KindInt)
	}
}

func round(args []*series.Series, n int) (*series.Series, error) {
	x := args[0]
	if err := requireNumeric(x); err != nil {
		return nil, err
	}
	digits := int64(0)
	if len(args) == 2 {
		d, ok := args[1].Value(0).(int64)
		if !ok || args[1].Len() != 1 {
			return nil, fmt.Errorf("digits must be a single integer")
		}
		digits = d
	}
	scale := math.Pow(10, float64(digits))
	out, err := mapFloat(func(f float64) float64 { return math.Round(f*scale) / scale })(args[:1], n)
	if err != nil || x.Kind() != series.KindInt {
		return out, err
	}
	return out.Cast(series.KindInt)
}

func coalesce(args []*series.Series, n int) (*series.Series, error) {
	kinds := make([]series.Kind, len(args))
	for i, a := range args {
		kinds[i] = a.Kind()
	}
	kind, pair, ok := series.CommonKind(kinds, false)
	if !ok {
		return nil, fmt.Errorf("arguments have incompatible kinds %s and %s", pair[0], pair[1])
	}
	out := make([]any, n)
	for i := range out {
		for _, a := range args {
			if v := a.Value(at(a, i)); v != nil {
				out[i] = v
				break
			}
		}
	}
	return buildKind(kind, out, args)
}

func ifElse(args []*series.Series, n int) (*series.Series, error) {
	cond, yes, no := args[0], args[1], args[2]
	if err := requireBool(cond); err != nil {
		return nil, err
	}
	kind, ok := series.Supertype(yes.Kind(), no.Kind(), false)
	if !ok {
		return nil, fmt.Errorf("branches have incompatible kinds %s and %s", yes.Kind(), no.Kind())
	}
	out := make([]any, n)
	for i := range out {
		c, ok := cond.Value(at(cond, i)).(bool)
		switch {
		case !ok:
		case c:
			out[i] = yes.Value(at(yes, i))
		default:
			out[i] = no.Value(at(no, i))
		}
	}
	return buildKind(kind, out, args[1:])
}

// buildKind builds values of kind, merging categorical levels from sources.
func buildKind(kind series.Kind, values []any, sources []*series.Series) (*series.Series, error) {
	if kind != series.KindCategorical {
		return series.Build("", kind, values)
	}
	var levels []string
	seen := make(map[string]bool)
	for _, s := range sources {
		for _, l := range s.Levels() {
			if !seen[l] {
				seen[l] = true
				levels = append(levels, l)
			}
		}
	}
	return series.NewCategorical("", values, levels)
}

func isIn(args []*series.Series, n int) (*series.Series, error) {
	x := args[0]
	set := make(map[string]bool)
	for _, a := range args[1:] {
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				set[a.Key(i)] = true
			}
		}
	}
	out := make([]any, n)
	for i := range out {
		idx := at(x, i)
		out[i] = !x.IsNull(idx) && set[x.Key(idx)]
	}
	return series.Build("", series.KindBool, out)
}

func between(args []*series.Series, n int) (*series.Series, error) {
	x, lo, hi := args[0], args[1], args[2]
	out := make([]any, n)
	for i := range out {
		v, l, h := x.Value(at(x, i)), lo.Value(at(lo, i)), hi.Value(at(hi, i))
		if v == nil || l == nil || h == nil {
			continue
		}
		out[i] = series.CompareValues(v, l) >= 0 && series.CompareValues(v, h) <= 0
	}
	return series.Build("", series.KindBool, out)
}

var kindsByName = map[string]series.Kind{
	"bool": series.KindBool, "int": series.KindInt, "float": series.KindFloat,
	"string": series.KindString, "categorical": series.KindCategorical,
}

func cast(args []*series.Series, n int) (*series.Series, error) {
	name, err := scalarString(args[1], "kind")
	if err != nil {
		return nil, err
	}
	kind, ok := kindsByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", name)
	}
	x, err := Broadcast(args[0], n)
	if err != nil {
		return nil, err
	}
	return x.Cast(kind)
}

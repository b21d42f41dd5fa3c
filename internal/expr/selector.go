package expr

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/paveg/tidyframe/internal/common"
	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// Selector picks column names out of a frame. Pattern selectors that match
// nothing resolve to an empty list; only literal names fail.
type Selector interface {
	Resolve(f Frame) ([]string, error)
	String() string
}

type namesSelector struct {
	names []string
}

// Cols selects columns by exact name, in the given order. Absent names are
// an UnknownColumnError.
func Cols(names ...string) Selector {
	return namesSelector{names: names}
}

func (s namesSelector) Resolve(f Frame) ([]string, error) {
	for _, name := range s.names {
		if _, ok := f.Column(name); !ok {
			return nil, errors.NewUnknownColumnError("select", name, f.ColumnNames())
		}
	}
	return slices.Clone(s.names), nil
}

func (s namesSelector) String() string {
	return common.FormatFunction("cols", common.FormatStrings(s.names)...)
}

type predicateSelector struct {
	desc  string
	match func(name string, col *series.Series) bool
}

func (s predicateSelector) Resolve(f Frame) ([]string, error) {
	var out []string
	for _, name := range f.ColumnNames() {
		col, _ := f.Column(name)
		if s.match(name, col) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s predicateSelector) String() string { return s.desc }

// StartsWith selects columns whose name has the prefix.
func StartsWith(prefix string) Selector {
	return predicateSelector{
		desc:  common.FormatFunction("starts_with", common.FormatLiteral(prefix)),
		match: func(name string, _ *series.Series) bool { return strings.HasPrefix(name, prefix) },
	}
}

// EndsWith selects columns whose name has the suffix.
func EndsWith(suffix string) Selector {
	return predicateSelector{
		desc:  common.FormatFunction("ends_with", common.FormatLiteral(suffix)),
		match: func(name string, _ *series.Series) bool { return strings.HasSuffix(name, suffix) },
	}
}

// Contains selects columns whose name contains the substring.
func Contains(sub string) Selector {
	return predicateSelector{
		desc:  common.FormatFunction("contains", common.FormatLiteral(sub)),
		match: func(name string, _ *series.Series) bool { return strings.Contains(name, sub) },
	}
}

// Matches selects columns whose name matches the regular expression. An
// invalid pattern fails at resolution.
func Matches(pattern string) Selector {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return invalidSelector{err: fmt.Errorf("matches: invalid pattern %q: %w", pattern, err)}
	}
	return predicateSelector{
		desc:  common.FormatFunction("matches", common.FormatLiteral(pattern)),
		match: func(name string, _ *series.Series) bool { return re.MatchString(name) },
	}
}

// Glob selects columns whose name matches a shell-style glob such as
// "score_*" or "q[0-9]".
func Glob(pattern string) Selector {
	g, err := glob.Compile(pattern)
	if err != nil {
		return invalidSelector{err: fmt.Errorf("glob: invalid pattern %q: %w", pattern, err)}
	}
	return predicateSelector{
		desc:  common.FormatFunction("glob", common.FormatLiteral(pattern)),
		match: func(name string, _ *series.Series) bool { return g.Match(name) },
	}
}

// Everything selects every column.
func Everything() Selector {
	return predicateSelector{
		desc:  "everything()",
		match: func(string, *series.Series) bool { return true },
	}
}

// OfKind selects columns of any of the given kinds.
func OfKind(kinds ...series.Kind) Selector {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return predicateSelector{
		desc:  common.FormatFunction("of_kind", names...),
		match: func(_ string, col *series.Series) bool { return slices.Contains(kinds, col.Kind()) },
	}
}

type exceptSelector struct {
	inner Selector
}

// Except selects every column the inner selector does not.
func Except(inner Selector) Selector {
	return exceptSelector{inner: inner}
}

func (s exceptSelector) Resolve(f Frame) ([]string, error) {
	excluded, err := s.inner.Resolve(f)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range f.ColumnNames() {
		if !slices.Contains(excluded, name) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s exceptSelector) String() string { return common.FormatFunction("except", s.inner.String()) }

type invalidSelector struct {
	err error
}

func (s invalidSelector) Resolve(Frame) ([]string, error) { return nil, s.err }

func (s invalidSelector) String() string { return common.FormatFunction("invalid", s.err.Error()) }

// ResolveAll resolves selectors in order and removes duplicates, keeping
// each name at its first position.
func ResolveAll(op string, f Frame, sels ...Selector) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, sel := range sels {
		names, err := sel.Resolve(f)
		if err != nil {
			var unknown *errors.UnknownColumnError
			if stderrors.As(err, &unknown) {
				unknown.Op = op
			}
			return nil, err
		}
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out, nil
}

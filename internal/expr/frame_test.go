package expr_test

import (
	"github.com/paveg/tidyframe/internal/series"
)

// testFrame is a minimal expr.Frame over a fixed list of columns.
type testFrame struct {
	cols []*series.Series
}

func frameOf(cols ...*series.Series) testFrame {
	return testFrame{cols: cols}
}

func (f testFrame) Column(name string) (*series.Series, bool) {
	for _, c := range f.cols {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

func (f testFrame) ColumnNames() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	return names
}

func (f testFrame) Len() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

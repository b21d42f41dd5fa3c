package common_test

import (
	"testing"

	"github.com/paveg/tidyframe/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"function with args", common.FormatFunction("sum", "col(x)"), "sum(col(x))"},
		{"function without args", common.FormatFunction("n"), "n()"},
		{"binary", common.FormatBinaryOperation("col(a)", "+", "1"), "(col(a) + 1)"},
		{"unary", common.FormatUnaryOperation("not", "col(b)"), "not(col(b))"},
		{"string literal", common.FormatLiteral("x"), `"x"`},
		{"null literal", common.FormatLiteral(nil), "null"},
		{"int literal", common.FormatLiteral(int64(3)), "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}

	assert.Equal(t, []string{`"a"`, `"b"`}, common.FormatStrings([]string{"a", "b"}))
}

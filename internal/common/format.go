// Package common provides the string renderings shared by expressions,
// selectors and pipeline verbs.
package common

import (
	"fmt"
	"strings"
)

// FormatFunction renders name(arg1, arg2, ...).
func FormatFunction(name string, args ...string) string {
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}

// FormatBinaryOperation renders (left operator right).
func FormatBinaryOperation(left, operator, right string) string {
	return fmt.Sprintf("(%s %s %s)", left, operator, right)
}

// FormatUnaryOperation renders operator(operand).
func FormatUnaryOperation(operator, operand string) string {
	return fmt.Sprintf("%s(%s)", operator, operand)
}

// FormatLiteral renders a literal value, quoting strings.
func FormatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", x)
	}
	return fmt.Sprintf("%v", v)
}

// FormatStrings renders a list of strings as a function argument list.
func FormatStrings(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

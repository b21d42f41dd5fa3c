// Package validation provides input validation utilities for table
// operations: column existence, unique names, length consistency, kind
// checks and index bounds. Validators compose through CompoundValidator and
// report the typed errors from the errors package.
package validation

import (
	"fmt"
	"slices"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	ColumnNames() []string
	Len() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	table   ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(table ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		table:   table,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the table
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.table.HasColumn(column) {
			return errors.NewUnknownColumnError(v.op, column, v.table.ColumnNames())
		}
	}
	return nil
}

// UniqueNamesValidator validates that no name appears twice
type UniqueNamesValidator struct {
	names []string
	op    string
}

// NewUniqueNamesValidator creates a validator for column name uniqueness
func NewUniqueNamesValidator(op string, names ...string) *UniqueNamesValidator {
	return &UniqueNamesValidator{names: names, op: op}
}

// Validate reports the first repeated name
func (v *UniqueNamesValidator) Validate() error {
	seen := make(map[string]bool, len(v.names))
	for _, name := range v.names {
		if seen[name] {
			return errors.NewColumnNameCollisionError(v.op, name)
		}
		seen[name] = true
	}
	return nil
}

// LengthValidator validates array length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		return &errors.DataFrameError{
			Op:      v.op,
			Message: fmt.Sprintf("%s: expected length %d, got %d", v.context, v.expected, v.actual),
			Cause:   errors.ErrMismatchedLength,
		}
	}
	return nil
}

// KindValidator validates that a column has one of the accepted kinds
type KindValidator struct {
	column *series.Series
	kinds  []series.Kind
	op     string
}

// NewKindValidator creates a validator for column kinds
func NewKindValidator(column *series.Series, op string, kinds ...series.Kind) *KindValidator {
	return &KindValidator{column: column, kinds: kinds, op: op}
}

// Validate checks the column kind
func (v *KindValidator) Validate() error {
	if slices.Contains(v.kinds, v.column.Kind()) {
		return nil
	}
	return errors.NewValidationError(v.op, v.column.Name(),
		fmt.Sprintf("unsupported column kind %s", v.column.Kind()))
}

// IndexValidator validates index bounds
type IndexValidator struct {
	index int
	max   int
	op    string
}

// NewIndexValidator creates a validator for index operations
func NewIndexValidator(index, maxIndex int, op string) *IndexValidator {
	return &IndexValidator{
		index: index,
		max:   maxIndex,
		op:    op,
	}
}

// Validate checks if index is within bounds
func (v *IndexValidator) Validate() error {
	if v.index < 0 || v.index >= v.max {
		message := fmt.Sprintf("index %d out of bounds [0, %d)", v.index, v.max)
		return errors.NewValidationError(v.op, "", message)
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(table ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(table, op, columns...).Validate()
}

// ValidateUniqueNames is a convenience function for name uniqueness
func ValidateUniqueNames(op string, names ...string) error {
	return NewUniqueNamesValidator(op, names...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateKind is a convenience function for kind validation
func ValidateKind(column *series.Series, op string, kinds ...series.Kind) error {
	return NewKindValidator(column, op, kinds...).Validate()
}

// ValidateIndex is a convenience function for index validation
func ValidateIndex(index, maxIndex int, op string) error {
	return NewIndexValidator(index, maxIndex, op).Validate()
}

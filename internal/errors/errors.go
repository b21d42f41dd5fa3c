// Package errors provides standardized error types for table operations.
// DataFrameError carries generic operation context; the typed errors below
// cover the failure modes callers are expected to branch on, each matching
// its sentinel through errors.Is.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Sentinels for errors.Is matching.
var (
	ErrUnknownColumn            = stderrors.New("unknown column")
	ErrMalformedCase            = stderrors.New("malformed case_when")
	ErrCaseTypeMismatch         = stderrors.New("case_when branch types have no common type")
	ErrRowApply                 = stderrors.New("row-wise function failed")
	ErrAmbiguousPivot           = stderrors.New("ambiguous pivot")
	ErrColumnNameCollision      = stderrors.New("column name collision")
	ErrSchemaUnionConflict      = stderrors.New("schema union conflict")
	ErrUnsupportedFormat        = stderrors.New("unsupported format")
	ErrMismatchedLength         = stderrors.New("columns must have the same length")
	ErrNotNestedTable           = stderrors.New("cell is not a nested table")
	ErrNotScalarAggregation     = stderrors.New("expression does not reduce to a single value")
	ErrObjectColumnNotSupported = stderrors.New("object columns have no columnar representation")
)

// DataFrameError represents standardized errors across all table operations
type DataFrameError struct {
	Op      string // Operation name (e.g., "arrange", "filter", "join")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *DataFrameError) Is(target error) bool {
	if df, ok := target.(*DataFrameError); ok {
		return e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
	}
	return false
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{Op: op, Message: message}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{Op: op, Column: column, Message: message}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{Op: op, Message: "internal error occurred", Cause: cause}
}

// UnknownColumnError reports a reference to a column the table does not have.
type UnknownColumnError struct {
	Op         string
	Column     string
	Suggestion string
}

// minSuggestionSimilarity is the Levenshtein similarity below which no
// suggestion is offered.
const minSuggestionSimilarity = 0.5

// NewUnknownColumnError creates an UnknownColumnError, suggesting the closest
// of the available names when one is similar enough.
func NewUnknownColumnError(op, column string, available []string) *UnknownColumnError {
	return &UnknownColumnError{
		Op:         op,
		Column:     column,
		Suggestion: closestName(column, available),
	}
}

func closestName(name string, candidates []string) string {
	lev := metrics.NewLevenshtein()
	best, bestScore := "", minSuggestionSimilarity
	for _, c := range candidates {
		if score := strutil.Similarity(name, c, lev); score >= bestScore && c != name {
			if score > bestScore || best == "" {
				best, bestScore = c, score
			}
		}
	}
	return best
}

func (e *UnknownColumnError) Error() string {
	msg := fmt.Sprintf("%s: unknown column '%s'", e.Op, e.Column)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", e.Suggestion)
	}
	return msg
}

func (e *UnknownColumnError) Is(target error) bool { return target == ErrUnknownColumn }

// MalformedCaseError reports a case_when built with a bad argument list.
type MalformedCaseError struct {
	Args   int
	Reason string
}

func NewMalformedCaseError(args int, reason string) *MalformedCaseError {
	return &MalformedCaseError{Args: args, Reason: reason}
}

func (e *MalformedCaseError) Error() string {
	return fmt.Sprintf("case_when: %s (got %d arguments)", e.Reason, e.Args)
}

func (e *MalformedCaseError) Is(target error) bool { return target == ErrMalformedCase }

// CaseTypeMismatchError reports branch values with no common supertype.
type CaseTypeMismatchError struct {
	Kinds []string
}

func NewCaseTypeMismatchError(kinds ...string) *CaseTypeMismatchError {
	return &CaseTypeMismatchError{Kinds: kinds}
}

func (e *CaseTypeMismatchError) Error() string {
	return fmt.Sprintf("case_when: branch values have no common type: %s", strings.Join(e.Kinds, ", "))
}

func (e *CaseTypeMismatchError) Is(target error) bool { return target == ErrCaseTypeMismatch }

// RowApplyError reports a row-wise function failure at a specific row.
type RowApplyError struct {
	Row   int
	Cause error
}

func NewRowApplyError(row int, cause error) *RowApplyError {
	return &RowApplyError{Row: row, Cause: cause}
}

func (e *RowApplyError) Error() string {
	return fmt.Sprintf("row-wise function failed at row %d: %v", e.Row, e.Cause)
}

func (e *RowApplyError) Unwrap() error { return e.Cause }

func (e *RowApplyError) Is(target error) bool { return target == ErrRowApply }

// AmbiguousPivotError reports an (id, name) cell receiving more than one
// value while no values function was supplied.
type AmbiguousPivotError struct {
	ID    string
	Name  string
	Count int
}

func NewAmbiguousPivotError(id, name string, count int) *AmbiguousPivotError {
	return &AmbiguousPivotError{ID: id, Name: name, Count: count}
}

func (e *AmbiguousPivotError) Error() string {
	return fmt.Sprintf("pivot_wider: %d values for id [%s] and name '%s'; supply a values function",
		e.Count, e.ID, e.Name)
}

func (e *AmbiguousPivotError) Is(target error) bool { return target == ErrAmbiguousPivot }

// ColumnNameCollisionError reports an operation that would produce two
// columns with the same name.
type ColumnNameCollisionError struct {
	Op     string
	Column string
}

func NewColumnNameCollisionError(op, column string) *ColumnNameCollisionError {
	return &ColumnNameCollisionError{Op: op, Column: column}
}

func (e *ColumnNameCollisionError) Error() string {
	return fmt.Sprintf("%s: column '%s' already exists", e.Op, e.Column)
}

func (e *ColumnNameCollisionError) Is(target error) bool { return target == ErrColumnNameCollision }

// SchemaUnionConflictError reports the same column name carrying
// incompatible kinds in tables being combined.
type SchemaUnionConflictError struct {
	Column string
	Left   string
	Right  string
}

func NewSchemaUnionConflictError(column, left, right string) *SchemaUnionConflictError {
	return &SchemaUnionConflictError{Column: column, Left: left, Right: right}
}

func (e *SchemaUnionConflictError) Error() string {
	return fmt.Sprintf("column '%s' has incompatible kinds %s and %s", e.Column, e.Left, e.Right)
}

func (e *SchemaUnionConflictError) Is(target error) bool { return target == ErrSchemaUnionConflict }

// UnsupportedFormatError reports an input whose format cannot be read.
type UnsupportedFormatError struct {
	Path   string
	Format string
	Reason string
}

func NewUnsupportedFormatError(path, format, reason string) *UnsupportedFormatError {
	return &UnsupportedFormatError{Path: path, Format: format, Reason: reason}
}

func (e *UnsupportedFormatError) Error() string {
	msg := fmt.Sprintf("unsupported format %q for %s", e.Format, e.Path)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

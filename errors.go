package tidyframe

import "github.com/paveg/tidyframe/internal/errors"

// Sentinel errors for errors.Is.
var (
	ErrUnknownColumn            = errors.ErrUnknownColumn
	ErrMalformedCase            = errors.ErrMalformedCase
	ErrCaseTypeMismatch         = errors.ErrCaseTypeMismatch
	ErrRowApply                 = errors.ErrRowApply
	ErrAmbiguousPivot           = errors.ErrAmbiguousPivot
	ErrColumnNameCollision      = errors.ErrColumnNameCollision
	ErrSchemaUnionConflict      = errors.ErrSchemaUnionConflict
	ErrUnsupportedFormat        = errors.ErrUnsupportedFormat
	ErrMismatchedLength         = errors.ErrMismatchedLength
	ErrNotNestedTable           = errors.ErrNotNestedTable
	ErrNotScalarAggregation     = errors.ErrNotScalarAggregation
	ErrObjectColumnNotSupported = errors.ErrObjectColumnNotSupported
)

// Typed errors for errors.As.
type (
	DataFrameError           = errors.DataFrameError
	UnknownColumnError       = errors.UnknownColumnError
	MalformedCaseError       = errors.MalformedCaseError
	CaseTypeMismatchError    = errors.CaseTypeMismatchError
	RowApplyError            = errors.RowApplyError
	AmbiguousPivotError      = errors.AmbiguousPivotError
	ColumnNameCollisionError = errors.ColumnNameCollisionError
	SchemaUnionConflictError = errors.SchemaUnionConflictError
	UnsupportedFormatError   = errors.UnsupportedFormatError
)

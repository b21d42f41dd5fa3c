package validation_test

import (
	"testing"

	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockColumnProvider implements ColumnProvider for testing.
type MockColumnProvider struct {
	columns []string
	length  int
}

func (m *MockColumnProvider) HasColumn(name string) bool {
	for _, col := range m.columns {
		if col == name {
			return true
		}
	}
	return false
}

func (m *MockColumnProvider) ColumnNames() []string {
	return m.columns
}

func (m *MockColumnProvider) Len() int {
	return m.length
}

func TestColumnValidator(t *testing.T) {
	mockTable := &MockColumnProvider{
		columns: []string{"id", "name"},
		length:  3,
	}

	t.Run("Valid columns", func(t *testing.T) {
		validator := validation.NewColumnValidator(mockTable, "arrange", "id", "name")
		require.NoError(t, validator.Validate())
	})

	t.Run("Invalid column", func(t *testing.T) {
		validator := validation.NewColumnValidator(mockTable, "arrange", "nme")
		err := validator.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, dferrors.ErrUnknownColumn)

		var colErr *dferrors.UnknownColumnError
		require.ErrorAs(t, err, &colErr)
		assert.Equal(t, "arrange", colErr.Op)
		assert.Equal(t, "nme", colErr.Column)
		assert.Equal(t, "name", colErr.Suggestion)
	})

	t.Run("Mixed valid and invalid columns", func(t *testing.T) {
		validator := validation.NewColumnValidator(mockTable, "select", "id", "missing", "name")
		var colErr *dferrors.UnknownColumnError
		require.ErrorAs(t, validator.Validate(), &colErr)
		assert.Equal(t, "missing", colErr.Column)
	})
}

func TestUniqueNamesValidator(t *testing.T) {
	require.NoError(t, validation.ValidateUniqueNames("new", "a", "b"))

	err := validation.ValidateUniqueNames("new", "a", "b", "a")
	require.ErrorIs(t, err, dferrors.ErrColumnNameCollision)
	var collision *dferrors.ColumnNameCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "a", collision.Column)
}

func TestLengthValidator(t *testing.T) {
	t.Run("Equal lengths", func(t *testing.T) {
		require.NoError(t, validation.NewLengthValidator(3, 3, "new", "column b").Validate())
	})

	t.Run("Different lengths", func(t *testing.T) {
		err := validation.NewLengthValidator(3, 2, "new", "column b").Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, dferrors.ErrMismatchedLength)

		var dfErr *dferrors.DataFrameError
		require.ErrorAs(t, err, &dfErr)
		assert.Equal(t, "new", dfErr.Op)
		assert.Contains(t, dfErr.Message, "expected length 3, got 2")
	})
}

func TestKindValidator(t *testing.T) {
	col := series.FromValues("x", []any{1.5, 2.5})

	require.NoError(t, validation.ValidateKind(col, "mean", series.KindInt, series.KindFloat))

	err := validation.ValidateKind(col, "str_detect", series.KindString)
	var dfErr *dferrors.DataFrameError
	require.ErrorAs(t, err, &dfErr)
	assert.Equal(t, "x", dfErr.Column)
	assert.Contains(t, dfErr.Message, "float")
}

func TestIndexValidator(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		max     int
		wantErr bool
	}{
		{"in range", 2, 5, false},
		{"first", 0, 5, false},
		{"at end", 5, 5, true},
		{"negative", -1, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateIndex(tt.index, tt.max, "slice")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCompoundValidator(t *testing.T) {
	mockTable := &MockColumnProvider{columns: []string{"id"}, length: 3}

	t.Run("All validators pass", func(t *testing.T) {
		validator := validation.NewCompoundValidator(
			validation.NewColumnValidator(mockTable, "arrange", "id"),
			validation.NewLengthValidator(3, 3, "arrange", "keys"),
		)
		require.NoError(t, validator.Validate())
	})

	t.Run("First validator fails", func(t *testing.T) {
		validator := validation.NewCompoundValidator(
			validation.NewColumnValidator(mockTable, "arrange", "missing"),
			validation.NewLengthValidator(3, 2, "arrange", "keys"),
		)
		assert.ErrorIs(t, validator.Validate(), dferrors.ErrUnknownColumn)
	})

	t.Run("Second validator fails", func(t *testing.T) {
		validator := validation.NewCompoundValidator(
			validation.NewColumnValidator(mockTable, "arrange", "id"),
			validation.NewLengthValidator(3, 2, "arrange", "keys"),
		)
		assert.ErrorIs(t, validator.Validate(), dferrors.ErrMismatchedLength)
	})
}

package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/table"
	"github.com/paveg/tidyframe/internal/testutil"
)

func TestJoin(t *testing.T) {
	left := testutil.NewTable(t,
		"id", []any{1, 2, 3, nil},
		"v", []any{"a", "b", "c", "d"},
	)
	right := testutil.NewTable(t,
		"id", []any{2, 4, 2, nil},
		"w", []any{20.0, 40.0, 22.0, 0.0},
	)

	tests := []struct {
		name     string
		joinType table.JoinType
		ids      []any
		v        []any
		w        []any
	}{
		{
			name:     "inner",
			joinType: table.InnerJoin,
			ids:      []any{int64(2), int64(2), nil},
			v:        []any{"b", "b", "d"},
			w:        []any{20.0, 22.0, 0.0},
		},
		{
			name:     "left",
			joinType: table.LeftJoin,
			ids:      []any{int64(1), int64(2), int64(2), int64(3), nil},
			v:        []any{"a", "b", "b", "c", "d"},
			w:        []any{nil, 20.0, 22.0, nil, 0.0},
		},
		{
			name:     "right",
			joinType: table.RightJoin,
			ids:      []any{int64(2), int64(2), nil, int64(4)},
			v:        []any{"b", "b", "d", nil},
			w:        []any{20.0, 22.0, 0.0, 40.0},
		},
		{
			name:     "full",
			joinType: table.FullJoin,
			ids:      []any{int64(1), int64(2), int64(2), int64(3), nil, int64(4)},
			v:        []any{"a", "b", "b", "c", "d", nil},
			w:        []any{nil, 20.0, 22.0, nil, 0.0, 40.0},
		},
		{
			name:     "semi",
			joinType: table.SemiJoin,
			ids:      []any{int64(2), nil},
			v:        []any{"b", "d"},
		},
		{
			name:     "anti",
			joinType: table.AntiJoin,
			ids:      []any{int64(1), int64(3)},
			v:        []any{"a", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := left.Join(right, table.JoinOptions{Type: tt.joinType, By: []string{"id"}})
			require.NoError(t, err)
			assert.Equal(t, tt.ids, testutil.Values(t, out, "id"))
			assert.Equal(t, tt.v, testutil.Values(t, out, "v"))
			if tt.w == nil {
				assert.Equal(t, []string{"id", "v"}, out.ColumnNames())
				return
			}
			assert.Equal(t, []string{"id", "v", "w"}, out.ColumnNames())
			assert.Equal(t, tt.w, testutil.Values(t, out, "w"))
		})
	}
}

func TestJoinSuffixesAndDefaults(t *testing.T) {
	left := testutil.NewTable(t, "k", []any{"a", "b"}, "val", []any{1, 2})
	right := testutil.NewTable(t, "k", []any{"b", "a"}, "val", []any{3, 4})

	t.Run("shared names default to keys", func(t *testing.T) {
		out, err := left.Join(right, table.JoinOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"k", "val"}, out.ColumnNames())
		assert.Equal(t, 0, out.Len())
	})

	t.Run("clashing columns get default suffixes", func(t *testing.T) {
		out, err := left.Join(right, table.JoinOptions{By: []string{"k"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"k", "val.x", "val.y"}, out.ColumnNames())
		assert.Equal(t, []any{int64(4), int64(3)}, testutil.Values(t, out, "val.y"))
	})

	t.Run("custom suffixes", func(t *testing.T) {
		out, err := left.Join(right, table.JoinOptions{By: []string{"k"}, Suffixes: [2]string{"_l", "_r"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"k", "val_l", "val_r"}, out.ColumnNames())
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := left.Join(right, table.JoinOptions{By: []string{"nope"}})
		require.ErrorIs(t, err, errors.ErrUnknownColumn)
	})

	t.Run("nothing in common", func(t *testing.T) {
		_, err := left.Join(testutil.NewTable(t, "z", []any{1}), table.JoinOptions{})
		require.Error(t, err)
	})

	t.Run("key kinds that cannot combine", func(t *testing.T) {
		ints := testutil.NewTable(t, "k", []any{1})
		_, err := left.Join(ints, table.JoinOptions{Type: table.FullJoin, By: []string{"k"}})
		require.ErrorIs(t, err, errors.ErrSchemaUnionConflict)
	})
}

package io_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tidyframe/internal/io"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
	"github.com/paveg/tidyframe/internal/testutil"
)

func TestJSONReader(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		data := `[
			{"id": 1, "name": "Alice", "score": 1.5, "active": true},
			{"id": 2, "name": "Bob", "score": 2, "active": false},
			{"id": 3, "score": null, "active": true}
		]`

		tbl, err := io.NewJSONReader(strings.NewReader(data), io.JSONOptions{Format: io.JSONArray}).Read()
		require.NoError(t, err)

		assert.Equal(t, []string{"active", "id", "name", "score"}, tbl.ColumnNames())
		assert.Equal(t, []any{int64(1), int64(2), int64(3)}, testutil.Values(t, tbl, "id"))
		assert.Equal(t, []any{"Alice", "Bob", nil}, testutil.Values(t, tbl, "name"))
		assert.Equal(t, []any{1.5, 2.0, nil}, testutil.Values(t, tbl, "score"))
		assert.Equal(t, []any{true, false, true}, testutil.Values(t, tbl, "active"))
	})

	t.Run("lines with limit", func(t *testing.T) {
		data := "{\"a\": 1}\n\n{\"a\": 2}\n{\"a\": 3}\n"

		tbl, err := io.NewJSONReader(strings.NewReader(data), io.JSONOptions{Format: io.JSONLines, MaxRecords: 2}).Read()
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1), int64(2)}, testutil.Values(t, tbl, "a"))
	})

	t.Run("mixed scalars become strings", func(t *testing.T) {
		tbl, err := io.NewJSONReader(strings.NewReader(`[{"v": 1}, {"v": "x"}]`), io.JSONOptions{}).Read()
		require.NoError(t, err)
		assert.Equal(t, []any{"1", "x"}, testutil.Values(t, tbl, "v"))
	})

	t.Run("nested values make object columns", func(t *testing.T) {
		tbl, err := io.NewJSONReader(strings.NewReader(`[{"v": [1, 2]}, {"v": {"k": 1}}]`), io.JSONOptions{}).Read()
		require.NoError(t, err)
		col, _ := tbl.Column("v")
		assert.Equal(t, series.KindObject, col.Kind())
	})

	t.Run("malformed line", func(t *testing.T) {
		_, err := io.NewJSONReader(strings.NewReader("{\"a\": 1}\n{oops\n"), io.JSONOptions{Format: io.JSONLines}).Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}

func TestJSONWriter(t *testing.T) {
	tbl := testutil.NewTable(t,
		"name", []any{"Alice", "Bob"},
		"score", []any{1.5, nil},
	)

	t.Run("lines keep column order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, io.JSONOptions{Format: io.JSONLines}).Write(tbl))
		assert.Equal(t, "{\"name\":\"Alice\",\"score\":1.5}\n{\"name\":\"Bob\",\"score\":null}\n", buf.String())
	})

	t.Run("array round trip", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, io.JSONOptions{Format: io.JSONArray, Indent: true}).Write(tbl))

		back, err := io.NewJSONReader(&buf, io.JSONOptions{Format: io.JSONArray}).Read()
		require.NoError(t, err)
		testutil.AssertTableEqual(t, tbl, back)
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, io.JSONOptions{}).Write(table.Empty(0)))
		assert.Equal(t, "[]", buf.String())
	})

	t.Run("nested tables become arrays", func(t *testing.T) {
		inner := testutil.NewTable(t, "a", []any{1})
		nested, err := table.New(series.NewObject("data", []any{inner}))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, io.JSONOptions{Format: io.JSONLines}).Write(nested))
		assert.Equal(t, "{\"data\":[{\"a\":1}]}\n", buf.String())
	})
}

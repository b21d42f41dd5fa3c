package io_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tidyframe/internal/io"
	"github.com/paveg/tidyframe/internal/testutil"
)

func sheetsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/abc-123_x/values/Responses 2024" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestReadDataGoogleSheet(t *testing.T) {
	server := sheetsServer(t, `{
		"range": "'Responses 2024'!A1:C4",
		"majorDimension": "ROWS",
		"values": [["name", "age", "score"], ["Ann", "31", "1.5"], ["Ben"], ["Cy", "40", ""]]
	}`)

	tbl, lbl, err := io.ReadData(context.Background(), io.ReadOptions{
		GoogleSheet: &io.SheetOptions{
			URL:      "https://docs.google.com/spreadsheets/d/abc-123_x/edit#gid=0",
			Sheet:    "Responses 2024",
			Endpoint: server.URL,
			Client:   server.Client(),
		},
		Silent: true,
	})
	require.NoError(t, err)
	assert.Nil(t, lbl)
	assert.Equal(t, []string{"name", "age", "score"}, tbl.ColumnNames())
	assert.Equal(t, []any{int64(31), nil, int64(40)}, testutil.Values(t, tbl, "age"))
	assert.Equal(t, []any{1.5, nil, nil}, testutil.Values(t, tbl, "score"))
}

func TestSheetReaderHierarchicalHeader(t *testing.T) {
	server := sheetsServer(t, `{"values": [["Age", ""], ["min", "max"], ["1", "9"]]}`)

	tbl, err := io.NewSheetReader(context.Background(), io.SheetOptions{
		URL:      "https://docs.google.com/spreadsheets/d/abc-123_x",
		Sheet:    "Responses 2024",
		Headers:  io.HeaderOptions{N: 2},
		Endpoint: server.URL,
		Client:   server.Client(),
	}).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"Age (min)", "Age (max)"}, tbl.ColumnNames())
}

func TestSheetReaderErrors(t *testing.T) {
	server := sheetsServer(t, `{}`)

	tests := []struct {
		name string
		opts io.SheetOptions
	}{
		{name: "URL without id", opts: io.SheetOptions{URL: "https://example.com/sheet", Client: server.Client()}},
		{name: "missing credentials", opts: io.SheetOptions{URL: "https://docs.google.com/spreadsheets/d/abc-123_x"}},
		{name: "unreadable credentials", opts: io.SheetOptions{URL: "https://docs.google.com/spreadsheets/d/abc-123_x", Credentials: "/no/such/key.json"}},
		{name: "unknown worksheet", opts: io.SheetOptions{
			URL:      "https://docs.google.com/spreadsheets/d/abc-123_x",
			Sheet:    "Other",
			Endpoint: server.URL,
			Client:   server.Client(),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := io.NewSheetReader(context.Background(), tt.opts).Read()
			require.Error(t, err)
		})
	}
}

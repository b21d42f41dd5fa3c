package tidyframe

import (
	"context"

	tfio "github.com/paveg/tidyframe/internal/io"
)

type (
	// ReadOptions controls ReadData.
	ReadOptions = tfio.ReadOptions
	// SheetOptions addresses a Google Sheets worksheet.
	SheetOptions = tfio.SheetOptions
	// HeaderOptions flattens multi-row headers into column names.
	HeaderOptions = tfio.HeaderOptions
)

// ReadData loads a table from a local path, file URL, http(s) URL or Google
// Sheet. The format follows opts.Format, then the extension, then the
// content. Labels are returned when opts.Labels names a sidecar file.
func ReadData(ctx context.Context, opts ReadOptions) (*Table, *Labels, error) {
	return tfio.ReadData(ctx, opts)
}

// ParenCombiner names a column "base (level1; level2)".
func ParenCombiner(sep string) func([]string) string { return tfio.ParenCombiner(sep) }

// JoinCombiner joins header levels with sep.
func JoinCombiner(sep string) func([]string) string { return tfio.JoinCombiner(sep) }

// WriteCSV writes t with a header row. The delimiter follows the
// extension: tab for tsv and txt, space for dat, comma otherwise.
func WriteCSV(t *Table, path string) error { return tfio.WriteCSV(t, path) }

// WriteParquet writes t as a snappy-compressed Parquet file.
func WriteParquet(t *Table, path string) error { return tfio.WriteParquet(t, path) }

// WriteJSON writes t as a JSON array, or as JSON lines for .ndjson and
// .jsonl paths.
func WriteJSON(t *Table, path string) error { return tfio.WriteJSON(t, path) }

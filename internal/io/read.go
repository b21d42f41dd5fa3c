package io

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/labels"
	"github.com/paveg/tidyframe/internal/logging"
	"github.com/paveg/tidyframe/internal/monitoring"
	"github.com/paveg/tidyframe/internal/table"
)

// Format families recognised by ReadData.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatNDJSON  = "ndjson"
	FormatParquet = "parquet"
)

var parquetMagic = []byte("PAR1")

func init() {
	filetype.AddMatcher(filetype.NewType("parquet", "application/vnd.apache.parquet"), func(buf []byte) bool {
		return bytes.HasPrefix(buf, parquetMagic)
	})
}

// ReadOptions configures ReadData.
type ReadOptions struct {
	// Path is a local path (~ allowed), a file:// URL or an http(s) URL
	Path string
	// Format overrides detection, e.g. "csv" or "xlsx"
	Format string
	// Delimiter overrides the extension's default separator
	Delimiter rune
	// Headers describes multi-row headers; N = 0 reads a one-row header
	Headers HeaderOptions
	// Sheet selects the worksheet of a workbook
	Sheet string
	// NullValues are read as missing in addition to empty cells
	NullValues []string
	// Labels is an optional json, yaml or toml labels sidecar file
	Labels string
	// GoogleSheet reads a Google spreadsheet instead of Path
	GoogleSheet *SheetOptions
	// Client downloads http(s) sources; nil uses http.DefaultClient
	Client *http.Client
	// Silent suppresses the "loading data" and "done" log lines
	Silent bool
}

// ReadData loads a table from a file, URL or Google spreadsheet, choosing
// the reader from the (case-insensitive) extension or, without one, from
// the content. It also returns the labels loaded from the Labels sidecar,
// or nil when none is given.
func ReadData(ctx context.Context, opts ReadOptions) (*table.Table, *labels.Labels, error) {
	log := logging.Logger()

	var (
		reader DataReader
		name   string
	)
	if opts.GoogleSheet != nil {
		sheet := *opts.GoogleSheet
		if opts.Headers.N > 0 {
			sheet.Headers = opts.Headers
		}
		reader = NewSheetReader(ctx, sheet)
		name = sheet.URL
	} else {
		src, err := resolveSource(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		data, err := fetch(ctx, src, opts.Client)
		if err != nil {
			return nil, nil, err
		}
		ext := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
		if ext == "" {
			ext = src.extension()
		}
		if ext == "" {
			ext = sniff(data)
			log.Debug("sniffed format", "source", src.base(), "format", ext)
		}
		if reader, err = readerFor(src.location, ext, data, opts); err != nil {
			return nil, nil, err
		}
		name = src.base()
	}

	if !opts.Silent {
		log.Info("loading data", "source", name)
	}

	var out *table.Table
	err := monitoring.Global().RecordOperation("read_data", 0, 0, func() (monitoring.Result, error) {
		t, err := reader.Read()
		if err != nil {
			return monitoring.Result{}, err
		}
		out = t
		return monitoring.Result{Rows: t.Len(), Columns: t.Width()}, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", name, err)
	}

	var lbl *labels.Labels
	if opts.Labels != "" {
		if lbl, err = labels.Load(opts.Labels); err != nil {
			return nil, nil, err
		}
	}

	if !opts.Silent {
		log.Info("done", "source", name, "rows", out.Len(), "columns", out.Width())
	}
	return out, lbl, nil
}

// readerFor maps an extension to its reader.
func readerFor(path, ext string, data []byte, opts ReadOptions) (DataReader, error) {
	r := bytes.NewReader(data)
	switch ext {
	case "csv", "tsv", "txt", "dat":
		csvOpts := DefaultCSVOptions()
		csvOpts.Delimiter = defaultDelimiter(ext)
		if opts.Delimiter != 0 {
			csvOpts.Delimiter = opts.Delimiter
		}
		csvOpts.Headers = opts.Headers
		csvOpts.NullValues = opts.NullValues
		return NewCSVReader(r, csvOpts), nil
	case "xlsx", "xltx", "xlt", "xlsm":
		return NewExcelReader(r, ExcelOptions{
			Sheet:      opts.Sheet,
			Header:     true,
			Headers:    opts.Headers,
			NullValues: opts.NullValues,
		}), nil
	case "xls", "ods":
		return nil, errors.NewUnsupportedFormatError(path, ext, "legacy spreadsheet containers cannot be read; save the workbook as xlsx")
	case "json":
		return NewJSONReader(r, JSONOptions{Format: JSONArray}), nil
	case "ndjson", "jsonl":
		return NewJSONReader(r, JSONOptions{Format: JSONLines}), nil
	case "parquet":
		return NewParquetReader(r, nil), nil
	case "rds", "rda", "rdata":
		return nil, errors.NewUnsupportedFormatError(path, ext, "R data files cannot be read; export the data as csv or parquet")
	case "dta":
		return nil, errors.NewUnsupportedFormatError(path, ext, "Stata files cannot be read; export the data as csv or parquet")
	case "sav":
		return nil, errors.NewUnsupportedFormatError(path, ext, "SPSS files cannot be read; export the data as csv or parquet")
	default:
		return nil, errors.NewUnsupportedFormatError(path, ext, "no reader for this file type")
	}
}

func defaultDelimiter(ext string) rune {
	switch ext {
	case "tsv", "txt":
		return '\t'
	case "dat":
		return ' '
	default:
		return ','
	}
}

// sniff guesses the extension of extension-less content. Text that is not
// JSON is read as CSV.
func sniff(data []byte) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		if kind.Extension == "zip" {
			return "xlsx"
		}
		return kind.Extension
	}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("{")):
		return FormatNDJSON
	default:
		return FormatCSV
	}
}

// fetch returns the bytes of a local file or downloads a URL.
func fetch(ctx context.Context, src source, client *http.Client) ([]byte, error) {
	if !src.remote {
		data, err := os.ReadFile(src.location)
		if err != nil {
			return nil, fmt.Errorf("file %s not found: %w", src.location, err)
		}
		return data, nil
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.location, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", src.location, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", src.location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: %s", src.location, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", src.location, err)
	}
	return data, nil
}

// WriteCSV writes the table to path with a header row. The delimiter
// follows the extension: tab for tsv and txt, space for dat, comma
// otherwise.
func WriteCSV(t *table.Table, path string) error {
	opts := DefaultCSVOptions()
	opts.Delimiter = defaultDelimiter(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	return writeFile(path, func(w io.Writer) error {
		return NewCSVWriter(w, opts).Write(t)
	})
}

// WriteParquet writes the table to path as snappy-compressed Parquet.
func WriteParquet(t *table.Table, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return NewParquetWriter(w, DefaultParquetOptions()).Write(t)
	})
}

// WriteJSON writes the table to path as a JSON array, or as JSON lines when
// the extension is ndjson or jsonl.
func WriteJSON(t *table.Table, path string) error {
	opts := JSONOptions{Format: JSONArray, Indent: true}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl":
		opts = JSONOptions{Format: JSONLines}
	}
	return writeFile(path, func(w io.Writer) error {
		return NewJSONWriter(w, opts).Write(t)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

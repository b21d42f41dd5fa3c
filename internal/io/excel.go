package io

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/paveg/tidyframe/internal/table"
)

// ExcelOptions contains configuration options for spreadsheet reads
type ExcelOptions struct {
	// Sheet is the worksheet to read; empty means the first one
	Sheet string
	// Header indicates whether the first row contains headers
	Header bool
	// Headers flattens a multi-row header; it takes precedence over Header
	Headers HeaderOptions
	// NullValues are read as missing in addition to empty cells
	NullValues []string
}

// ExcelReader reads one worksheet of an Office Open XML workbook
type ExcelReader struct {
	reader  io.Reader
	options ExcelOptions
}

// NewExcelReader creates a new spreadsheet reader with the specified options
func NewExcelReader(reader io.Reader, options ExcelOptions) *ExcelReader {
	return &ExcelReader{reader: reader, options: options}
}

// Read reads the worksheet's formatted cell values and infers column kinds
// the same way the CSV reader does.
func (r *ExcelReader) Read() (*table.Table, error) {
	f, err := excelize.OpenReader(r.reader)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := r.options.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return table.Empty(0), nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return recordsToTable(rows, r.options.Header, r.options.Headers, r.options.NullValues)
}

package io

import (
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"
)

// Read reads CSV data and returns a table
func (r *CSVReader) Read() (*table.Table, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	if csvReader.Comma == 0 {
		csvReader.Comma = ','
	}
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return recordsToTable(records, r.options.Header, r.options.Headers, r.options.NullValues)
}

// recordsToTable splits raw string records into header and data rows and
// builds a typed table. It backs the CSV, spreadsheet and Google Sheets
// readers.
func recordsToTable(records [][]string, header bool, headers HeaderOptions, nulls []string) (*table.Table, error) {
	if len(records) == 0 {
		return table.Empty(0), nil
	}

	nHeader := 0
	switch {
	case headers.N > 0:
		nHeader = min(headers.N, len(records))
	case header:
		nHeader = 1
	}
	headerRows, dataRows := records[:nHeader], records[nHeader:]

	width := 0
	for _, row := range records {
		width = max(width, len(row))
	}

	var names []string
	switch {
	case headers.N > 0:
		flat, err := FlattenHeader(headerRows, width, headers)
		if err != nil {
			return nil, err
		}
		names = flat
	case nHeader == 1:
		names = slices.Clone(headerRows[0])
		for len(names) < width {
			names = append(names, fmt.Sprintf("column_%d", len(names)+1))
		}
	default:
		names = make([]string, width)
		for i := range names {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	cols := make([]*series.Series, width)
	for c := range width {
		data := make([]string, len(dataRows))
		for i, row := range dataRows {
			if c < len(row) {
				data[i] = row[c]
			}
		}
		s, err := seriesFromStrings(names[c], data, nulls)
		if err != nil {
			return nil, fmt.Errorf("creating series for column %s: %w", names[c], err)
		}
		cols[c] = s
	}
	return table.New(cols...)
}

// seriesFromStrings creates a series from string data, inferring the
// narrowest kind. Empty strings and null markers are missing values.
func seriesFromStrings(name string, data []string, nulls []string) (*series.Series, error) {
	isNull := func(s string) bool {
		return s == "" || slices.Contains(nulls, s)
	}
	kind := inferKind(data, isNull)

	values := make([]any, len(data))
	for i, raw := range data {
		if isNull(raw) {
			continue
		}
		switch kind {
		case series.KindBool:
			values[i] = strings.EqualFold(raw, trueStr)
		case series.KindInt:
			values[i], _ = strconv.ParseInt(raw, 10, 64)
		case series.KindFloat:
			values[i], _ = strconv.ParseFloat(raw, 64)
		default:
			values[i] = raw
		}
	}
	return series.Build(name, kind, values)
}

// inferKind determines the most specific kind every non-missing value
// parses as. A column with no values at all is a string column.
func inferKind(data []string, isNull func(string) bool) series.Kind {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	hasValue := false

	for _, value := range data {
		if isNull(value) {
			continue
		}
		hasValue = true

		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}
		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	switch {
	case !hasValue:
		return series.KindString
	case canBeBool:
		return series.KindBool
	case canBeInt:
		return series.KindInt
	case canBeFloat:
		return series.KindFloat
	default:
		return series.KindString
	}
}

// Write writes the table in CSV format. Missing values are written as empty
// fields; object cells use their printed form.
func (w *CSVWriter) Write(t *table.Table) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter
	if csvWriter.Comma == 0 {
		csvWriter.Comma = ','
	}

	if w.options.Header {
		if err := csvWriter.Write(t.ColumnNames()); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	cols := t.Columns()
	row := make([]string, len(cols))
	for i := range t.Len() {
		for j, c := range cols {
			row[j] = series.FormatValue(c.Value(i))
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

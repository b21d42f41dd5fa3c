package io

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
)

// Read reads JSON data and returns a table.
func (r *JSONReader) Read() (*table.Table, error) {
	switch r.options.Format {
	case JSONArray:
		return r.readJSONArray()
	case JSONLines:
		return r.readJSONLines()
	default:
		return nil, fmt.Errorf("unsupported JSON format: %d", r.options.Format)
	}
}

// readJSONArray reads JSON array format.
func (r *JSONReader) readJSONArray() (*table.Table, error) {
	dec := json.NewDecoder(r.reader)
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("unmarshaling JSON array: %w", err)
	}
	if r.options.MaxRecords > 0 && len(records) > r.options.MaxRecords {
		records = records[:r.options.MaxRecords]
	}
	return recordsFromJSON(records)
}

// readJSONLines reads JSON Lines format.
func (r *JSONReader) readJSONLines() (*table.Table, error) {
	scanner := bufio.NewScanner(r.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []map[string]any
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(line))
		dec.UseNumber()
		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("unmarshaling JSON line %d: %w", lineNum, err)
		}
		records = append(records, record)

		if r.options.MaxRecords > 0 && len(records) >= r.options.MaxRecords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning JSON lines: %w", err)
	}
	return recordsFromJSON(records)
}

// recordsFromJSON builds one column per key found in any record, sorted by
// name. Keys absent from a record are missing values.
func recordsFromJSON(records []map[string]any) (*table.Table, error) {
	if len(records) == 0 {
		return table.Empty(0), nil
	}

	var names []string
	seen := make(map[string]bool)
	for _, record := range records {
		for key := range record {
			if !seen[key] {
				seen[key] = true
				names = append(names, key)
			}
		}
	}
	slices.Sort(names)

	cols := make([]*series.Series, len(names))
	for c, name := range names {
		data := make([]any, len(records))
		for i, record := range records {
			data[i] = fromJSONValue(record[name])
		}
		cols[c] = seriesFromJSON(name, data)
	}
	return table.New(cols...)
}

func fromJSONValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// seriesFromJSON infers the column kind. Scalars with no common kind are
// read as strings; nested objects and arrays make an object column.
func seriesFromJSON(name string, data []any) *series.Series {
	kinds := make([]series.Kind, len(data))
	for i, v := range data {
		kinds[i] = series.KindOf(v)
	}
	if kind, _, ok := series.CommonKind(kinds, true); ok {
		if s, err := series.Build(name, kind, data); err == nil {
			return s
		}
	}
	return series.NewObject(name, data)
}

// Write writes the table in JSON format. Keys follow column order and
// missing values are written as null.
func (w *JSONWriter) Write(t *table.Table) error {
	records, err := w.encodeRecords(t)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch w.options.Format {
	case JSONArray:
		buf.WriteByte('[')
		for i, rec := range records {
			if i > 0 {
				buf.WriteByte(',')
			}
			if w.options.Indent {
				buf.WriteString("\n  ")
			}
			buf.Write(rec)
		}
		if w.options.Indent && len(records) > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteByte(']')
	case JSONLines:
		for _, rec := range records {
			buf.Write(rec)
			buf.WriteByte('\n')
		}
	default:
		return fmt.Errorf("unsupported JSON format: %d", w.options.Format)
	}

	_, err = w.writer.Write(buf.Bytes())
	return err
}

// encodeRecords renders each row as a JSON object.
func (w *JSONWriter) encodeRecords(t *table.Table) ([][]byte, error) {
	cols := t.Columns()
	keys := make([][]byte, len(cols))
	for j, c := range cols {
		k, err := json.Marshal(c.Name())
		if err != nil {
			return nil, err
		}
		keys[j] = k
	}

	records := make([][]byte, t.Len())
	for i := range t.Len() {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for j, c := range cols {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[j])
			buf.WriteByte(':')
			v, err := json.Marshal(jsonValue(c.Value(i)))
			if err != nil {
				return nil, fmt.Errorf("marshaling %s at row %d: %w", c.Name(), i, err)
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
		records[i] = buf.Bytes()
	}
	return records, nil
}

// jsonValue turns nested tables into arrays of row objects.
func jsonValue(v any) any {
	nested, ok := v.(*table.Table)
	if !ok {
		return v
	}
	rows := make([]map[string]any, nested.Len())
	for i := range rows {
		row, _ := nested.Row(i)
		for k, cell := range row {
			row[k] = jsonValue(cell)
		}
		rows[i] = row
	}
	return rows
}

// Package io reads tables from delimited text, spreadsheets, JSON, Parquet
// and Google Sheets, and writes them back as CSV, JSON or Parquet.
//
// ReadData is the entry point: it resolves the source (local path, file://
// or http(s) URL, ~ prefix), picks a reader from the extension or, when
// there is none, from the content, and flattens hierarchical headers.
//
// Key components:
//   - DataReader/DataWriter interfaces for the per-format backends
//   - CSVReader/CSVWriter with type inference (bool, int, float, string)
//   - ExcelReader over excelize, JSONReader/JSONWriter, ParquetReader/ParquetWriter
//   - SheetReader for the Google Sheets values API
package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/tidyframe/internal/table"
)

const (
	// DefaultBatchSize is the default batch size for Parquet writes
	DefaultBatchSize = 1000
)

// DataReader defines the interface for reading a table from a source
type DataReader interface {
	// Read reads the whole source and returns a table
	Read() (*table.Table, error)
}

// DataWriter defines the interface for writing a table to a destination
type DataWriter interface {
	// Write writes the table to the destination
	Write(t *table.Table) error
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// Header indicates whether the first row contains headers
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
	// NullValues are read as missing in addition to the empty string
	NullValues []string
	// Headers flattens a multi-row header; it takes precedence over Header
	Headers HeaderOptions
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: ',',
		Header:    true,
	}
}

// CSVReader reads CSV data into tables
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions) *CSVReader {
	return &CSVReader{
		reader:  reader,
		options: options,
	}
}

// CSVWriter writes tables in CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression is one of snappy, gzip, lz4, zstd or uncompressed
	Compression string
	// BatchSize for writing operations
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// ParquetReader reads Parquet data into tables
type ParquetReader struct {
	reader io.Reader
	mem    memory.Allocator
}

// NewParquetReader creates a new Parquet reader. A nil allocator uses the
// Go allocator.
func NewParquetReader(reader io.Reader, mem memory.Allocator) *ParquetReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetReader{
		reader: reader,
		mem:    mem,
	}
}

// ParquetWriter writes tables in Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{
		writer:  writer,
		options: options,
		mem:     memory.NewGoAllocator(),
	}
}

// JSONFormat selects between a single JSON array and one object per line
type JSONFormat int

const (
	// JSONArray is a top-level array of objects
	JSONArray JSONFormat = iota
	// JSONLines is newline-delimited JSON
	JSONLines
)

// JSONOptions contains configuration options for JSON operations
type JSONOptions struct {
	Format JSONFormat
	// MaxRecords limits how many records are read (0 = no limit)
	MaxRecords int
	// Indent pretty-prints JSON array output
	Indent bool
}

// JSONReader reads JSON data into tables
type JSONReader struct {
	reader  io.Reader
	options JSONOptions
}

// NewJSONReader creates a new JSON reader with the specified options
func NewJSONReader(reader io.Reader, options JSONOptions) *JSONReader {
	return &JSONReader{reader: reader, options: options}
}

// JSONWriter writes tables in JSON format
type JSONWriter struct {
	writer  io.Writer
	options JSONOptions
}

// NewJSONWriter creates a new JSON writer with the specified options
func NewJSONWriter(writer io.Writer, options JSONOptions) *JSONWriter {
	return &JSONWriter{writer: writer, options: options}
}

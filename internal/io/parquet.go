package io

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
)

// Read reads Parquet data and returns a table.
func (r *ParquetReader) Read() (*table.Table, error) {
	// Parquet needs random access, so the whole input is buffered
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	tbl, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer tbl.Release()

	return arrowTableToTable(tbl)
}

// arrowTableToTable converts an Arrow table, whose columns may be split in
// chunks, into a table.
func arrowTableToTable(tbl arrow.Table) (*table.Table, error) {
	cols := make([]*series.Series, tbl.NumCols())
	for i := range cols {
		col := tbl.Column(i)
		s, err := chunkedToSeries(col.Name(), col.Data())
		if err != nil {
			return nil, err
		}
		cols[i] = s
	}
	return table.New(cols...)
}

func chunkedToSeries(name string, chunked *arrow.Chunked) (*series.Series, error) {
	chunks := chunked.Chunks()
	if len(chunks) == 0 {
		empty := array.MakeArrayOfNull(memory.DefaultAllocator, chunked.DataType(), 0)
		defer empty.Release()
		return series.FromArrow(name, empty)
	}
	parts := make([]*series.Series, len(chunks))
	for i, chunk := range chunks {
		s, err := series.FromArrow(name, chunk)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return series.Concat(name, false, parts...)
}

// Write writes the table in Parquet format. Object columns cannot be
// written.
func (w *ParquetWriter) Write(t *table.Table) error {
	rec, err := t.ToArrow(w.mem)
	if err != nil {
		return fmt.Errorf("converting table to Arrow: %w", err)
	}
	defer rec.Release()

	var compression compress.Compression
	switch w.options.Compression {
	case "gzip":
		compression = compress.Codecs.Gzip
	case "lz4":
		compression = compress.Codecs.Lz4Raw
	case "zstd":
		compression = compress.Codecs.Zstd
	case "uncompressed":
		compression = compress.Codecs.Uncompressed
	default:
		compression = compress.Codecs.Snappy
	}

	batchSize := w.options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	props := parquet.NewWriterProperties(
		parquet.WithCompression(compression),
		parquet.WithBatchSize(int64(batchSize)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(w.mem),
		pqarrow.WithStoreSchema(),
	)

	writer, err := pqarrow.NewFileWriter(rec.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

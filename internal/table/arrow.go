package table

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/tidyframe/internal/series"
)

// ToArrow exports the table as an Arrow record. Categorical columns become
// dictionary arrays; object columns cannot be exported. The caller must
// Release the record.
func (t *Table) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	fields := make([]arrow.Field, len(t.columns))
	arrays := make([]arrow.Array, 0, len(t.columns))
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()

	for i, c := range t.columns {
		field, err := c.ArrowField()
		if err != nil {
			return nil, err
		}
		fields[i] = field
		arr, err := c.ToArrow(mem)
		if err != nil {
			return nil, err
		}
		arrays = append(arrays, arr)
	}
	schema := arrow.NewSchema(fields, nil)
	return array.NewRecord(schema, arrays, int64(t.nrows)), nil
}

// FromArrow builds a table from an Arrow record. Values are copied, so the
// record may be released afterwards.
func FromArrow(rec arrow.Record) (*Table, error) {
	cols := make([]*series.Series, rec.NumCols())
	for i := range cols {
		name := rec.ColumnName(i)
		c, err := series.FromArrow(name, rec.Column(i))
		if err != nil {
			return nil, fmt.Errorf("from_arrow: %w", err)
		}
		cols[i] = c
	}
	return newTable("from_arrow", int(rec.NumRows()), cols)
}

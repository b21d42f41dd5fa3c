package table_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
	"github.com/paveg/tidyframe/internal/testutil"
)

func TestArrowRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	size, err := series.NewCategorical("size", []any{"s", nil, "l"}, []string{"s", "m", "l"})
	require.NoError(t, err)
	tbl, err := table.New(
		series.FromValues("i", []any{1, nil, 3}),
		series.FromValues("f", []any{0.5, 1.5, nil}),
		series.FromValues("s", []any{"a", "b", "c"}),
		series.FromValues("b", []any{true, nil, false}),
		size,
	)
	require.NoError(t, err)

	rec, err := tbl.ToArrow(mem)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, arrow.DICTIONARY, rec.Schema().Field(4).Type.ID())

	back, err := table.FromArrow(rec)
	rec.Release()
	require.NoError(t, err)

	testutil.AssertTableEqual(t, tbl, back)
	sizeBack, _ := back.Column("size")
	assert.Equal(t, []string{"s", "m", "l"}, sizeBack.Levels())
}

func TestToArrowRejectsObjectColumns(t *testing.T) {
	tbl, err := table.New(series.NewObject("o", []any{struct{}{}}))
	require.NoError(t, err)

	_, err = tbl.ToArrow(nil)
	require.ErrorIs(t, err, errors.ErrObjectColumnNotSupported)
}

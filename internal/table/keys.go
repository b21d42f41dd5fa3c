package table

import (
	"strconv"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/paveg/tidyframe/internal/series"
)

const (
	keyIndexCapacityFactor = 1.3
	keyIndexLoadFactor     = 0.75
	keyIndexGrowthFactor   = 2
)

// rowKey identifies a row by its values in the given columns. Missing
// values share a key, so they group and join with each other. Each
// component is length-prefixed so distinct tuples never share a key.
func rowKey(cols []*series.Series, i int) string {
	if len(cols) == 1 {
		return cols[0].Key(i)
	}
	var b strings.Builder
	for _, c := range cols {
		k := c.Key(i)
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}

// keyIndex maps row keys to row lists through xxhash buckets. Keys are
// numbered in first-insertion order, which is the group order of every
// grouping verb.
type keyIndex struct {
	buckets  [][]int // entry ids per bucket
	capacity int
	entries  []keyEntry
}

type keyEntry struct {
	key  string
	rows []int
}

func newKeyIndex(estimatedSize int) *keyIndex {
	capacity := nextPowerOfTwo(int(float64(estimatedSize) * keyIndexCapacityFactor))
	return &keyIndex{
		buckets:  make([][]int, capacity),
		capacity: capacity,
	}
}

func (ki *keyIndex) bucket(key string) int {
	//nolint:gosec // capacity is always a positive power of two
	return int(xxhash.Sum64String(key) & uint64(ki.capacity-1))
}

// add appends row to key's row list and returns the key's id.
func (ki *keyIndex) add(key string, row int) int {
	b := ki.bucket(key)
	for _, id := range ki.buckets[b] {
		if ki.entries[id].key == key {
			ki.entries[id].rows = append(ki.entries[id].rows, row)
			return id
		}
	}

	id := len(ki.entries)
	ki.entries = append(ki.entries, keyEntry{key: key, rows: []int{row}})
	ki.buckets[b] = append(ki.buckets[b], id)

	if float64(len(ki.entries)) > float64(ki.capacity)*keyIndexLoadFactor {
		ki.resize()
	}
	return id
}

// get returns the rows stored under key.
func (ki *keyIndex) get(key string) ([]int, bool) {
	for _, id := range ki.buckets[ki.bucket(key)] {
		if ki.entries[id].key == key {
			return ki.entries[id].rows, true
		}
	}
	return nil, false
}

// groups returns the row lists in first-seen key order.
func (ki *keyIndex) groups() [][]int {
	out := make([][]int, len(ki.entries))
	for i, e := range ki.entries {
		out[i] = e.rows
	}
	return out
}

func (ki *keyIndex) resize() {
	ki.capacity *= keyIndexGrowthFactor
	ki.buckets = make([][]int, ki.capacity)
	for id, e := range ki.entries {
		b := ki.bucket(e.key)
		ki.buckets[b] = append(ki.buckets[b], id)
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}

// groupRows partitions rows by their values in cols, in first-seen order.
func groupRows(cols []*series.Series, n int) [][]int {
	return indexRows(cols, n).groups()
}

// indexRows builds a key index over every row of cols.
func indexRows(cols []*series.Series, n int) *keyIndex {
	ki := newKeyIndex(n)
	for i := 0; i < n; i++ {
		ki.add(rowKey(cols, i), i)
	}
	return ki
}

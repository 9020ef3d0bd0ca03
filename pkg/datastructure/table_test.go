package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildStreetTable() *IndexedTable[string] {
	tbl := NewIndexedTable[string]()
	tbl.Append(0, "A")
	tbl.Append(3, "B")
	return tbl
}

func TestIndexedTableBounds(t *testing.T) {
	tbl := NewIndexedTable[int]()
	for _, idx := range []int{0, 3, 5, 9} {
		tbl.Append(idx, idx*10)
	}

	assert.Equal(t, 1, tbl.UpperBound(0))
	assert.Equal(t, 1, tbl.UpperBound(2))
	assert.Equal(t, 2, tbl.UpperBound(3))
	assert.Equal(t, 4, tbl.UpperBound(9))
	assert.Equal(t, 4, tbl.UpperBound(100))

	assert.Equal(t, 0, tbl.LowerBound(0))
	assert.Equal(t, 1, tbl.LowerBound(1))
	assert.Equal(t, 1, tbl.LowerBound(3))
	assert.Equal(t, 3, tbl.LowerBound(9))
	assert.Equal(t, 4, tbl.LowerBound(10))
}

func TestIndexedTableIntervalAt(t *testing.T) {
	tbl := buildStreetTable()

	pos := tbl.IntervalAt(1)
	assert.Equal(t, 0, pos)
	assert.Equal(t, "A", tbl.At(pos).Value)

	pos = tbl.IntervalAt(3)
	assert.Equal(t, 1, pos)
	assert.Equal(t, "B", tbl.At(pos).Value)

	// past the last interval start nothing covers the index anymore
	assert.Equal(t, -1, tbl.IntervalAt(4))

	single := NewIndexedTable[string]()
	single.Append(0, "Only St")
	assert.Equal(t, 0, single.IntervalAt(0))
	assert.Equal(t, -1, single.IntervalAt(1))

	empty := NewIndexedTable[string]()
	assert.Equal(t, -1, empty.IntervalAt(0))
}

func TestIndexedTableSortedCheck(t *testing.T) {
	tbl := NewIndexedTable[int]()
	tbl.Append(0, 0)
	tbl.Append(2, 0)
	tbl.Append(5, 0)
	assert.True(t, tbl.IsStrictlySorted())

	tbl.Append(5, 0)
	assert.False(t, tbl.IsStrictlySorted())
}

func TestIndexedTablePopBack(t *testing.T) {
	tbl := buildStreetTable()
	assert.Equal(t, "B", tbl.Back().Value)

	tbl.PopBack()
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, "A", tbl.Back().Value)
}

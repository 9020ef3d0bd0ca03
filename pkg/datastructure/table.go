package datastructure

import "sort"

// IndexEntry is one annotation keyed by a path vertex index.
type IndexEntry[V any] struct {
	Index int
	Value V
}

// IndexedTable is an ordered vertex-index -> value table. The turn, time and
// street annotations of a route are all instances of it, so the binary
// searches and order checks live in one place instead of three hand-rolled
// walkers.
type IndexedTable[V any] struct {
	entries []IndexEntry[V]
}

func NewIndexedTable[V any]() *IndexedTable[V] {
	return &IndexedTable[V]{}
}

func (t *IndexedTable[V]) Append(index int, value V) {
	t.entries = append(t.entries, IndexEntry[V]{Index: index, Value: value})
}

func (t *IndexedTable[V]) Len() int {
	return len(t.entries)
}

func (t *IndexedTable[V]) Empty() bool {
	return len(t.entries) == 0
}

func (t *IndexedTable[V]) At(i int) IndexEntry[V] {
	return t.entries[i]
}

func (t *IndexedTable[V]) Back() IndexEntry[V] {
	return t.entries[len(t.entries)-1]
}

func (t *IndexedTable[V]) PopBack() {
	t.entries = t.entries[:len(t.entries)-1]
}

func (t *IndexedTable[V]) Entries() []IndexEntry[V] {
	return t.entries
}

// UpperBound returns the position of the first entry with Index strictly
// greater than idx, or Len() if no such entry exists.
func (t *IndexedTable[V]) UpperBound(idx int) int {
	return sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Index > idx
	})
}

// LowerBound returns the position of the first entry with Index >= idx, or
// Len() if no such entry exists.
func (t *IndexedTable[V]) LowerBound(idx int) int {
	return sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Index >= idx
	})
}

// IntervalAt treats entries as interval starts and returns the position of
// the entry covering idx, skipping the leading entry: the first entry with
// Index >= idx if it starts exactly at idx, otherwise its predecessor.
// Returns -1 when the table is empty or when idx lies strictly past the
// last interval start.
func (t *IndexedTable[V]) IntervalAt(idx int) int {
	if len(t.entries) == 0 {
		return -1
	}
	k := sort.Search(len(t.entries)-1, func(i int) bool {
		return t.entries[i+1].Index >= idx
	}) + 1
	if k == len(t.entries) {
		if t.entries[k-1].Index == idx {
			return k - 1
		}
		return -1
	}
	if t.entries[k].Index == idx {
		return k
	}
	return k - 1
}

// IsStrictlySorted reports whether entry indices are strictly increasing.
func (t *IndexedTable[V]) IsStrictlySorted() bool {
	for i := 1; i < len(t.entries); i++ {
		if t.entries[i-1].Index >= t.entries[i].Index {
			return false
		}
	}
	return true
}

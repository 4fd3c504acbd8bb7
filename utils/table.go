package utils

import "fmt"

// Table is a ragged row-major table of ints stored CSR style: row i is
// Data[Offsets[i]:Offsets[i+1]].
type Table struct {
	Offsets []int
	Data    []int
}

// NewTable builds a table of nRows rows in two passes over the same
// traversal. visit is called twice, first to count and then to fill, and must
// emit the identical sequence of (row, value) pairs both times. Values land in
// each row in emission order.
func NewTable(nRows int, visit func(emit func(row, value int))) (T Table) {
	T.Offsets = make([]int, nRows+1)
	visit(func(row, _ int) {
		T.Offsets[row+1]++
	})
	for i := 0; i < nRows; i++ {
		T.Offsets[i+1] += T.Offsets[i]
	}
	T.Data = make([]int, T.Offsets[nRows])
	cursor := make([]int, nRows)
	copy(cursor, T.Offsets[:nRows])
	visit(func(row, value int) {
		if cursor[row] >= T.Offsets[row+1] {
			panic(fmt.Sprintf("utils: table row %d overflow, traversal emitted more values on the fill pass", row))
		}
		T.Data[cursor[row]] = value
		cursor[row]++
	})
	return
}

// NumRows returns the number of rows
func (T Table) NumRows() int {
	if len(T.Offsets) == 0 {
		return 0
	}
	return len(T.Offsets) - 1
}

// Row returns a read-only view of row i
func (T Table) Row(i int) []int {
	return T.Data[T.Offsets[i]:T.Offsets[i+1]:T.Offsets[i+1]]
}

// RowLen returns the number of entries in row i
func (T Table) RowLen(i int) int {
	return T.Offsets[i+1] - T.Offsets[i]
}

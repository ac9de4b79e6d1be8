// Package crs implements a compressed row storage adjacency structure over
// dense integer node indices.
//
// A CRS stores the neighbours of row i in Columns()[RowOffsets()[i]:RowOffsets()[i+1]].
// It is built once through PushRow, in row order, into storage sized up front,
// and is read-only afterwards.
package crs

import (
	"fmt"
	"slices"

	"github.com/ma595/ffcx"
)

// CRS is a sparse row-oriented adjacency structure.
type CRS struct {
	numRows    int
	rowOffsets []int
	columns    []int
}

// New returns an empty CRS for numRows rows holding at most capacity column
// entries in total. Rows are added with PushRow.
func New(numRows, capacity int) *CRS {
	if numRows < 0 {
		numRows = 0
	}
	if capacity < 0 {
		capacity = 0
	}
	offsets := make([]int, 1, numRows+1)
	return &CRS{
		numRows:    numRows,
		rowOffsets: offsets,
		columns:    make([]int, 0, capacity),
	}
}

// PushRow appends the next row. Values must lie in [0, numRows).
//
// Pushing more rows than declared, or more entries than the declared
// capacity, fails with ffcx.ErrDimensionMismatch and leaves the CRS
// unchanged; the storage is never reallocated.
func (c *CRS) PushRow(cols []int) error {
	row := c.Len()
	if row >= c.numRows {
		return fmt.Errorf("push row %d into CRS of %d rows: %w", row, c.numRows, ffcx.ErrDimensionMismatch)
	}
	if len(c.columns)+len(cols) > cap(c.columns) {
		return fmt.Errorf("row %d needs %d entries, %d of %d left: %w",
			row, len(cols), cap(c.columns)-len(c.columns), cap(c.columns), ffcx.ErrDimensionMismatch)
	}
	for _, v := range cols {
		if v < 0 || v >= c.numRows {
			return fmt.Errorf("row %d: column %d outside [0, %d): %w", row, v, c.numRows, ffcx.ErrInvalidInput)
		}
	}

	c.columns = append(c.columns, cols...)
	c.rowOffsets = append(c.rowOffsets, len(c.columns))
	return nil
}

// Len returns the number of rows pushed so far.
func (c *CRS) Len() int {
	return len(c.rowOffsets) - 1
}

// NumRows returns the number of rows the CRS was created for.
func (c *CRS) NumRows() int {
	return c.numRows
}

// Complete reports whether every declared row has been pushed.
func (c *CRS) Complete() bool {
	return c.Len() == c.numRows
}

// NumNonzeros returns the total number of column entries.
func (c *CRS) NumNonzeros() int {
	return len(c.columns)
}

// Capacity returns the column capacity the CRS was created with.
func (c *CRS) Capacity() int {
	return cap(c.columns)
}

// Row returns the column entries of row i. The returned slice shares
// storage with the CRS and must not be modified; its capacity is clipped so
// appending to it copies.
func (c *CRS) Row(i int) []int {
	start, end := c.rowOffsets[i], c.rowOffsets[i+1]
	return c.columns[start:end:end]
}

// RowOffsets returns a copy of the row offset array (length Len()+1).
func (c *CRS) RowOffsets() []int {
	return slices.Clone(c.rowOffsets)
}

// Columns returns a copy of the flat column index array.
func (c *CRS) Columns() []int {
	return slices.Clone(c.columns)
}

// FromRows builds a complete CRS from explicit rows.
func FromRows(rows [][]int) (*CRS, error) {
	total := 0
	for _, r := range rows {
		total += len(r)
	}
	c := New(len(rows), total)
	for _, r := range rows {
		if err := c.PushRow(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Rows expands the CRS into one slice per row.
func (c *CRS) Rows() [][]int {
	rows := make([][]int, c.Len())
	for i := range rows {
		rows[i] = slices.Clone(c.Row(i))
	}
	return rows
}

// Invert returns the transposed adjacency: row j of the result lists, in
// ascending order, every row i of c that contains j. Inverting a dependency
// graph yields the dependants graph.
func (c *CRS) Invert() *CRS {
	n := c.numRows
	counts := make([]int, n)
	for _, v := range c.columns {
		counts[v]++
	}

	offsets := make([]int, n+1)
	for j := 0; j < n; j++ {
		offsets[j+1] = offsets[j] + counts[j]
	}

	columns := make([]int, len(c.columns))
	cursor := slices.Clone(offsets[:n])
	for i := 0; i < c.Len(); i++ {
		for _, j := range c.Row(i) {
			columns[cursor[j]] = i
			cursor[j]++
		}
	}

	return &CRS{numRows: n, rowOffsets: offsets, columns: columns}
}

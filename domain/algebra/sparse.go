package algebra

import (
	"fmt"
	"sort"
)

// Entry is one coordinate of a sparse matrix.
type Entry struct {
	Row, Col int
	Value    float64
}

// CSR is a compressed sparse row matrix. Column indices are sorted within each row and
// explicit zeros are not stored.
type CSR struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

// NewCSR builds a rows x cols matrix from coordinates; duplicate coordinates are summed.
func NewCSR(rows, cols int, entries []Entry) (*CSR, error) {
	perRow := make([]map[int]float64, rows)
	for _, e := range entries {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			return nil, fmt.Errorf("entry (%d,%d) outside %dx%d matrix", e.Row, e.Col, rows, cols)
		}
		if perRow[e.Row] == nil {
			perRow[e.Row] = make(map[int]float64)
		}
		perRow[e.Row][e.Col] += e.Value
	}

	m := &CSR{rows: rows, cols: cols, indptr: make([]int, rows+1)}
	for i, row := range perRow {
		present := make([]int, 0, len(row))
		for c, v := range row {
			if v != 0 {
				present = append(present, c)
			}
		}
		sort.Ints(present)
		for _, c := range present {
			m.indices = append(m.indices, c)
			m.data = append(m.data, row[c])
		}
		m.indptr[i+1] = len(m.indices)
	}
	return m, nil
}

// Dims returns the matrix shape.
func (m *CSR) Dims() (rows, cols int) { return m.rows, m.cols }

// NNZ returns the number of stored non-zero entries.
func (m *CSR) NNZ() int { return len(m.data) }

// At returns the value at (i, j).
func (m *CSR) At(i, j int) float64 {
	lo, hi := m.indptr[i], m.indptr[i+1]
	k := lo + sort.SearchInts(m.indices[lo:hi], j)
	if k < hi && m.indices[k] == j {
		return m.data[k]
	}
	return 0
}

// Each calls fn for every stored entry in row-major order.
func (m *CSR) Each(fn func(i, j int, v float64)) {
	for i := 0; i < m.rows; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			fn(i, m.indices[k], m.data[k])
		}
	}
}

// Multiply returns m x other using a dense row accumulator. Entries that cancel to
// exactly zero are dropped.
func (m *CSR) Multiply(other *CSR) (*CSR, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf("cannot multiply %dx%d by %dx%d", m.rows, m.cols, other.rows, other.cols)
	}

	out := &CSR{rows: m.rows, cols: other.cols, indptr: make([]int, m.rows+1)}
	acc := make([]float64, other.cols)
	touched := make([]bool, other.cols)
	var cols []int

	for i := 0; i < m.rows; i++ {
		cols = cols[:0]
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			a := m.data[k]
			r := m.indices[k]
			for kk := other.indptr[r]; kk < other.indptr[r+1]; kk++ {
				c := other.indices[kk]
				if !touched[c] {
					touched[c] = true
					cols = append(cols, c)
				}
				acc[c] += a * other.data[kk]
			}
		}
		sort.Ints(cols)
		for _, c := range cols {
			if acc[c] != 0 {
				out.indices = append(out.indices, c)
				out.data = append(out.data, acc[c])
			}
			acc[c] = 0
			touched[c] = false
		}
		out.indptr[i+1] = len(out.indices)
	}
	return out, nil
}

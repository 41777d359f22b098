package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCSR_MultiplyMatchesDense(t *testing.T) {
	a, err := NewCSR(2, 3, []Entry{
		{0, 0, 1}, {0, 2, 2},
		{1, 1, -3},
	})
	require.NoError(t, err)
	b, err := NewCSR(3, 2, []Entry{
		{0, 0, 4},
		{1, 0, 1}, {1, 1, 5},
		{2, 1, 6},
	})
	require.NoError(t, err)

	got, err := a.Multiply(b)
	require.NoError(t, err)

	var want mat.Dense
	want.Mul(toDense(a), toDense(b))
	rows, cols := got.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 2, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.Equal(t, want.At(i, j), got.At(i, j), "(%d,%d)", i, j)
		}
	}
	assert.Equal(t, 4, got.NNZ())
}

func TestCSR_DuplicatesSumAndZerosDrop(t *testing.T) {
	m, err := NewCSR(1, 2, []Entry{{0, 0, 1}, {0, 0, 2}, {0, 1, 1}, {0, 1, -1}})
	require.NoError(t, err)

	assert.Equal(t, 3.0, m.At(0, 0))
	assert.Equal(t, 0.0, m.At(0, 1))
	assert.Equal(t, 1, m.NNZ())
}

func TestCSR_Errors(t *testing.T) {
	_, err := NewCSR(1, 1, []Entry{{1, 0, 1}})
	assert.Error(t, err)

	a, _ := NewCSR(2, 2, nil)
	b, _ := NewCSR(3, 1, nil)
	_, err = a.Multiply(b)
	assert.Error(t, err)
}

func toDense(m *CSR) *mat.Dense {
	r, c := m.Dims()
	d := mat.NewDense(r, c, nil)
	m.Each(func(i, j int, v float64) { d.Set(i, j, v) })
	return d
}

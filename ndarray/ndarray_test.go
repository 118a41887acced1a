package ndarray

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, err := New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, a.Shape())
	assert.Equal(t, 2, a.Ndim())
	assert.Equal(t, 6, a.Size())

	v, err := a.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	_, err = New([]int{2, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = New([]int{-1}, nil)
	assert.ErrorIs(t, err, ErrNegativeDim)
}

func TestScalar(t *testing.T) {
	s := Scalar(3.5)
	assert.Equal(t, 0, s.Ndim())
	assert.Equal(t, 1, s.Size())
	v, err := s.At()
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestFromRows(t *testing.T) {
	a, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, a.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Data())

	row, err := a.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, row)
	assert.Len(t, a.Rows(), 3)

	_, err = FromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSetAndBounds(t *testing.T) {
	a, err := Zeros(2, 2)
	require.NoError(t, err)
	require.NoError(t, a.Set(7, 1, 0))
	assert.Equal(t, []float64{0, 0, 7, 0}, a.Data())

	assert.ErrorIs(t, a.Set(1, 2, 0), ErrIndexOutOfRange)
	_, err = a.At(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = a.Row(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestReshape(t *testing.T) {
	a := Vector(1, 2, 3, 4, 5, 6)
	b, err := a.Reshape(3, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, b.Shape())

	_, err = a.Reshape(4, 2)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEqualAndAllClose(t *testing.T) {
	a := Vector(1, math.NaN(), math.Inf(1))
	b := a.Clone()
	assert.True(t, a.Equal(b))
	assert.True(t, a.AllClose(b, 0, 0))

	c := Vector(1+1e-12, math.NaN(), math.Inf(1))
	assert.False(t, a.Equal(c))
	assert.True(t, a.AllClose(c, 1e-9, 0))

	d := Vector(1, math.NaN(), math.Inf(-1))
	assert.False(t, a.AllClose(d, 1, 1))

	m, _ := a.Reshape(3, 1)
	assert.False(t, a.Equal(m))
}

package ndarray

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var (
	// ErrShapeMismatch is returned when the data length does not match the shape.
	ErrShapeMismatch = errors.New("ndarray: data length does not match shape")
	// ErrNegativeDim is returned when a shape contains a negative dimension.
	ErrNegativeDim = errors.New("ndarray: negative dimension")
	// ErrIndexOutOfRange is returned when an index lies outside the array.
	ErrIndexOutOfRange = errors.New("ndarray: index out of range")
)

// Array is a dense float64 n-dimensional array stored in row-major (C) order.
//
// A zero-dimensional array (empty shape) holds exactly one element.
type Array struct {
	shape []int
	data  []float64
}

// New creates an array with the given shape backed by data.
// The slice is used directly, not copied.
func New(shape []int, data []float64) (*Array, error) {
	n, err := sizeOf(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v needs %d elements, got %d", ErrShapeMismatch, shape, n, len(data))
	}
	return &Array{shape: slices.Clone(shape), data: data}, nil
}

// Vector creates a 1-D array from values.
func Vector(values ...float64) *Array {
	return &Array{shape: []int{len(values)}, data: values}
}

// Scalar creates a 0-D array holding v.
func Scalar(v float64) *Array {
	return &Array{shape: []int{}, data: []float64{v}}
}

// FromRows creates a 2-D array by copying rows. All rows must have equal length.
func FromRows(rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return &Array{shape: []int{0, 0}, data: []float64{}}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return &Array{shape: []int{len(rows), cols}, data: data}, nil
}

// Zeros creates a zero-filled array of the given shape.
func Zeros(shape ...int) (*Array, error) {
	n, err := sizeOf(shape)
	if err != nil {
		return nil, err
	}
	return &Array{shape: slices.Clone(shape), data: make([]float64, n)}, nil
}

func sizeOf(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: %v", ErrNegativeDim, shape)
		}
		n *= d
	}
	return n, nil
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int { return slices.Clone(a.shape) }

// Ndim returns the number of dimensions.
func (a *Array) Ndim() int { return len(a.shape) }

// Size returns the total number of elements.
func (a *Array) Size() int { return len(a.data) }

// Data returns the backing slice in row-major order.
func (a *Array) Data() []float64 { return a.data }

func (a *Array) offset(idx []int) (int, error) {
	if len(idx) != len(a.shape) {
		return 0, fmt.Errorf("%w: got %d indices for %d dimensions", ErrIndexOutOfRange, len(idx), len(a.shape))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			return 0, fmt.Errorf("%w: index %d is %d, dimension is %d", ErrIndexOutOfRange, i, x, a.shape[i])
		}
		off = off*a.shape[i] + x
	}
	return off, nil
}

// At returns the element at idx.
func (a *Array) At(idx ...int) (float64, error) {
	off, err := a.offset(idx)
	if err != nil {
		return 0, err
	}
	return a.data[off], nil
}

// Set stores v at idx.
func (a *Array) Set(v float64, idx ...int) error {
	off, err := a.offset(idx)
	if err != nil {
		return err
	}
	a.data[off] = v
	return nil
}

// Row returns a view of row i along the first axis.
// For a 1-D array the row is the single element at i.
func (a *Array) Row(i int) ([]float64, error) {
	if len(a.shape) == 0 {
		return nil, fmt.Errorf("%w: 0-d array has no rows", ErrIndexOutOfRange)
	}
	if i < 0 || i >= a.shape[0] {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, i, a.shape[0])
	}
	stride := 1
	for _, d := range a.shape[1:] {
		stride *= d
	}
	return a.data[i*stride : (i+1)*stride], nil
}

// Rows returns views of every row along the first axis.
func (a *Array) Rows() [][]float64 {
	if len(a.shape) == 0 {
		return [][]float64{a.data}
	}
	rows := make([][]float64, a.shape[0])
	for i := range rows {
		rows[i], _ = a.Row(i)
	}
	return rows
}

// Reshape returns an array sharing the same data with a new shape.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	return New(shape, a.data)
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{shape: slices.Clone(a.shape), data: slices.Clone(a.data)}
}

// Equal reports whether both arrays have the same shape and bitwise equal
// elements. NaN compares equal to NaN.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !slices.Equal(a.shape, b.shape) {
		return false
	}
	for i, x := range a.data {
		y := b.data[i]
		if x != y && !(math.IsNaN(x) && math.IsNaN(y)) {
			return false
		}
	}
	return true
}

// AllClose reports whether both arrays have the same shape and every pair of
// elements satisfies |a-b| <= atol + rtol*|b|. Infinities must match exactly
// and NaN compares equal to NaN.
func (a *Array) AllClose(b *Array, rtol, atol float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !slices.Equal(a.shape, b.shape) {
		return false
	}
	for i, x := range a.data {
		y := b.data[i]
		switch {
		case math.IsNaN(x) || math.IsNaN(y):
			if !(math.IsNaN(x) && math.IsNaN(y)) {
				return false
			}
		case math.IsInf(x, 0) || math.IsInf(y, 0):
			if x != y {
				return false
			}
		case math.Abs(x-y) > atol+rtol*math.Abs(y):
			return false
		}
	}
	return true
}

// String formats the array for debugging.
func (a *Array) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Array%v", a.shape)
	if len(a.data) <= 16 {
		fmt.Fprintf(&sb, "%v", a.data)
	}
	return sb.String()
}

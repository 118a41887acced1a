package delimited

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jsondata/ndarray"
)

func TestWrite_Vector(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ndarray.Vector(1, 2.5)))
	assert.Equal(t, "1.000000000000000000e+00\n2.500000000000000000e+00\n", buf.String())
}

func TestWrite_Matrix(t *testing.T) {
	a, err := ndarray.FromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, a, func(o *WriteOptions) {
		o.Format = "%g"
		o.Delimiter = ","
		o.Header = "a,b"
	}))
	assert.Equal(t, "# a,b\n1,2\n3,4\n", buf.String())
}

func TestWrite_NonFinite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ndarray.Vector(math.NaN(), math.Inf(1), math.Inf(-1))))
	assert.Equal(t, "nan\ninf\n-inf\n", buf.String())

	got, err := Read(&buf)
	require.NoError(t, err)
	data := got.Data()
	assert.True(t, math.IsNaN(data[0]))
	assert.True(t, math.IsInf(data[1], 1))
	assert.True(t, math.IsInf(data[2], -1))
}

func TestWrite_UnsupportedDims(t *testing.T) {
	a, err := ndarray.Zeros(2, 2, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, Write(&bytes.Buffer{}, a), ErrUnsupportedDims)
	assert.ErrorIs(t, Write(&bytes.Buffer{}, ndarray.Scalar(1)), ErrUnsupportedDims)
}

func TestWrite_InvalidFormat(t *testing.T) {
	for _, format := range []string{"%d", "%s", "x%g", "%g%g"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, ndarray.Vector(1), func(o *WriteOptions) { o.Format = format })
			assert.ErrorIs(t, err, ErrInvalidFormat)
			assert.Zero(t, buf.Len())
		})
	}
	for _, format := range []string{"%g", "%.3f", "%14.4e", "%v"} {
		assert.NoError(t, CheckFormat(format), format)
	}
}

func TestRoundTrip(t *testing.T) {
	a, err := ndarray.FromRows([][]float64{{0.1, -2e-300, 3}, {4e17, 5.5, -6}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, a))
	got, err := Read(&buf)
	require.NoError(t, err)
	assert.True(t, a.Equal(got), "got %v", got)
}

func TestRead_Squeeze(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ndmin int
		shape []int
	}{
		{"column", "1\n2\n3\n", 0, []int{3}},
		{"row", "1 2 3\n", 0, []int{3}},
		{"single", "7\n", 0, []int{}},
		{"single ndmin1", "7\n", 1, []int{1}},
		{"row ndmin2", "1 2 3\n", 2, []int{1, 3}},
		{"column ndmin2", "1\n2\n", 2, []int{2, 1}},
		{"matrix", "1 2\n3 4\n", 0, []int{2, 2}},
		{"empty", "", 0, []int{0}},
		{"only comments", "# nothing\n\n", 0, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), func(o *ReadOptions) { o.Ndmin = tt.ndmin })
			require.NoError(t, err)
			assert.Equal(t, tt.shape, got.Shape())
		})
	}
}

func TestRead_CommentsAndDelimiter(t *testing.T) {
	input := "# header\nskip me\n1, 2 # trailing\n\n3, 4\n"
	got, err := Read(strings.NewReader(input), func(o *ReadOptions) {
		o.Delimiter = ","
		o.SkipRows = 2
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, got.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4}, got.Data())
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader("1 2\n3\n"))
	assert.ErrorIs(t, err, ErrRaggedRow)
	assert.Contains(t, err.Error(), "line 2")

	_, err = Read(strings.NewReader("1 x\n"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader("1\n"), func(o *ReadOptions) { o.Ndmin = 3 })
	assert.Error(t, err)
}

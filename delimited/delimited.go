// Package delimited reads and writes numeric arrays as delimited text.
//
// The defaults match NumPy's savetxt/loadtxt: one row per line, values
// formatted with "%.18e" and separated by a single space, "#" comments, and
// size-1 dimensions squeezed on load.
package delimited

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/jsondata/ndarray"
)

var (
	// ErrUnsupportedDims is returned when writing an array that is not 1-D or 2-D.
	ErrUnsupportedDims = errors.New("delimited: expected 1-D or 2-D array")
	// ErrRaggedRow is returned when a row has a different number of columns than the first row.
	ErrRaggedRow = errors.New("delimited: inconsistent number of columns")
	// ErrInvalidFormat is returned when a format does not produce a parsable number.
	ErrInvalidFormat = errors.New("delimited: invalid value format")
)

// DefaultFormat is the fmt verb applied to each value.
const DefaultFormat = "%.18e"

// WriteOptions configures Write.
type WriteOptions struct {
	// Format is the fmt verb applied to every value. Default: "%.18e".
	Format string
	// Delimiter separates columns. Default: " ".
	Delimiter string
	// Newline terminates every line. Default: "\n".
	Newline string
	// Header is written before the data, each line prefixed with Comments.
	Header string
	// Footer is written after the data, each line prefixed with Comments.
	Footer string
	// Comments prefixes header and footer lines. Default: "# ".
	Comments string
}

// DefaultWriteOptions returns the NumPy savetxt defaults.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Format:    DefaultFormat,
		Delimiter: " ",
		Newline:   "\n",
		Comments:  "# ",
	}
}

// Write encodes a 1-D array as one value per line, or a 2-D array as one row
// per line.
func Write(w io.Writer, a *ndarray.Array, optFns ...func(*WriteOptions)) error {
	opts := DefaultWriteOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if err := CheckFormat(opts.Format); err != nil {
		return err
	}

	var rows, cols int
	switch shape := a.Shape(); len(shape) {
	case 1:
		rows, cols = shape[0], 1
	case 2:
		rows, cols = shape[0], shape[1]
	default:
		return fmt.Errorf("%w, got %d-D", ErrUnsupportedDims, len(shape))
	}

	bw := bufio.NewWriter(w)
	if opts.Header != "" {
		writeComment(bw, opts.Header, opts.Comments, opts.Newline)
	}

	data := a.Data()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c > 0 {
				bw.WriteString(opts.Delimiter)
			}
			bw.WriteString(formatValue(opts.Format, data[r*cols+c]))
		}
		bw.WriteString(opts.Newline)
	}

	if opts.Footer != "" {
		writeComment(bw, opts.Footer, opts.Comments, opts.Newline)
	}
	return bw.Flush()
}

func writeComment(bw *bufio.Writer, text, prefix, newline string) {
	for _, line := range strings.Split(text, "\n") {
		bw.WriteString(prefix)
		bw.WriteString(line)
		bw.WriteString(newline)
	}
}

// CheckFormat reports whether format renders float64 values as text that
// Read can parse back.
func CheckFormat(format string) error {
	for _, v := range []float64{0, -1.5, 1e300} {
		out := strings.TrimSpace(fmt.Sprintf(format, v))
		if _, err := strconv.ParseFloat(out, 64); err != nil {
			return fmt.Errorf("%w: %q renders %v as %q", ErrInvalidFormat, format, v, out)
		}
	}
	return nil
}

func formatValue(format string, v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf(format, v)
}

// ReadOptions configures Read.
type ReadOptions struct {
	// Comments marks the rest of a line as a comment. Default: "#".
	Comments string
	// Delimiter separates columns. Empty means any run of whitespace.
	Delimiter string
	// SkipRows skips this many leading lines, including comment lines.
	SkipRows int
	// Ndmin is the minimum number of dimensions of the result (0, 1 or 2).
	// With 0, size-1 dimensions are squeezed away.
	Ndmin int
	// MaxLineSize bounds a single line in bytes. Default: 64 MiB.
	MaxLineSize int
}

// DefaultReadOptions returns the NumPy loadtxt defaults.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Comments:    "#",
		MaxLineSize: 64 << 20,
	}
}

// Read parses delimited text into an array.
func Read(r io.Reader, optFns ...func(*ReadOptions)) (*ndarray.Array, error) {
	opts := DefaultReadOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Ndmin < 0 || opts.Ndmin > 2 {
		return nil, fmt.Errorf("delimited: illegal ndmin %d", opts.Ndmin)
	}

	if opts.MaxLineSize <= 0 {
		opts.MaxLineSize = DefaultReadOptions().MaxLineSize
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, opts.MaxLineSize)), opts.MaxLineSize)

	var (
		data   []float64
		rows   int
		cols   = -1
		lineNo int
	)
	for sc.Scan() {
		lineNo++
		if lineNo <= opts.SkipRows {
			continue
		}
		line := sc.Text()
		if opts.Comments != "" {
			if i := strings.Index(line, opts.Comments); i >= 0 {
				line = line[:i]
			}
		}
		fields := splitFields(line, opts.Delimiter)
		if len(fields) == 0 {
			continue
		}
		if cols < 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrRaggedRow, lineNo, len(fields), cols)
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("delimited: line %d: %w", lineNo, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("delimited: %w", err)
	}

	if rows == 0 {
		shape := []int{0}
		if opts.Ndmin == 2 {
			shape = []int{0, 1}
		}
		return ndarray.New(shape, []float64{})
	}

	return ndarray.New(squeeze(rows, cols, opts.Ndmin), data)
}

func splitFields(line, delim string) []string {
	if delim == "" {
		return strings.Fields(line)
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}
	fields := strings.Split(line, delim)
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// squeeze applies loadtxt's dimension handling to a rows x cols result.
func squeeze(rows, cols, ndmin int) []int {
	shape := make([]int, 0, 2)
	if rows != 1 {
		shape = append(shape, rows)
	}
	if cols != 1 {
		shape = append(shape, cols)
	}
	switch {
	case ndmin == 2 && len(shape) < 2:
		// A single line is a row vector; a single column stays a column.
		if rows == 1 {
			return []int{1, cols}
		}
		return []int{rows, 1}
	case ndmin == 1 && len(shape) == 0:
		return []int{1}
	}
	return shape
}

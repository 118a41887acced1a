// Package npy implements the NumPy .npy array file format.
//
// Files are written as format version 1.0 (2.0 for oversized headers) with
// little-endian float64 data in C order. Reading accepts versions 1.0, 2.0 and
// 3.0, either byte order, Fortran order, and the common integer, unsigned,
// boolean and float dtypes, converting values to float64.
package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/jsondata/ndarray"
)

// Magic is the prefix of every .npy file.
const Magic = "\x93NUMPY"

// headerAlign is the alignment of the data section.
const headerAlign = 64

var (
	// ErrInvalidMagic is returned when the input does not start with Magic.
	ErrInvalidMagic = errors.New("npy: invalid magic")
	// ErrUnsupportedVersion is returned for unknown format versions.
	ErrUnsupportedVersion = errors.New("npy: unsupported format version")
	// ErrUnsupportedDType is returned for dtypes that cannot be converted to float64.
	ErrUnsupportedDType = errors.New("npy: unsupported dtype")
	// ErrInvalidHeader is returned when the header dictionary cannot be parsed.
	ErrInvalidHeader = errors.New("npy: invalid header")
)

// Header describes the array stored in a .npy file.
type Header struct {
	Major        byte
	Minor        byte
	Descr        string
	FortranOrder bool
	Shape        []int
}

// Write encodes a as a .npy file.
func Write(w io.Writer, a *ndarray.Array) error {
	dict := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': %s, }", shapeRepr(a.Shape()))

	major, headerLen := byte(1), paddedLen(len(dict), 2)
	if headerLen > math.MaxUint16 {
		major, headerLen = 2, paddedLen(len(dict), 4)
	}
	pad := headerLen - len(dict) - 1

	bw := bufio.NewWriter(w)
	bw.WriteString(Magic)
	bw.WriteByte(major)
	bw.WriteByte(0)
	if major == 1 {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(headerLen))
		bw.Write(b[:])
	} else {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(headerLen))
		bw.Write(b[:])
	}
	bw.WriteString(dict)
	bw.WriteString(strings.Repeat(" ", pad))
	bw.WriteByte('\n')

	var buf [8]byte
	for _, v := range a.Data() {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// paddedLen returns the header length, newline included, that aligns the
// data section to headerAlign.
func paddedLen(dictLen, lenSize int) int {
	total := len(Magic) + 2 + lenSize + dictLen + 1
	pad := (headerAlign - total%headerAlign) % headerAlign
	return dictLen + pad + 1
}

// shapeRepr formats a shape as a Python tuple literal.
func shapeRepr(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ReadHeader reads the magic, version and header dictionary from r, leaving r
// positioned at the start of the data.
func ReadHeader(r io.Reader) (*Header, error) {
	var pre [8]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return nil, fmt.Errorf("npy: read preamble: %w", err)
	}
	if string(pre[:6]) != Magic {
		return nil, ErrInvalidMagic
	}
	h := &Header{Major: pre[6], Minor: pre[7]}

	var headerLen int
	switch h.Major {
	case 1:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("npy: read header length: %w", err)
		}
		headerLen = int(binary.LittleEndian.Uint16(b[:]))
	case 2, 3:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("npy: read header length: %w", err)
		}
		headerLen = int(binary.LittleEndian.Uint32(b[:]))
	default:
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, h.Major, h.Minor)
	}

	dict, err := readN(r, int64(headerLen))
	if err != nil {
		return nil, fmt.Errorf("npy: read header: %w", err)
	}
	if err := h.parse(string(bytes.TrimSpace(dict))); err != nil {
		return nil, err
	}
	return h, nil
}

var (
	descrRe   = regexp.MustCompile(`['"]descr['"]\s*:\s*['"]([^'"]*)['"]`)
	fortranRe = regexp.MustCompile(`['"]fortran_order['"]\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`['"]shape['"]\s*:\s*\(([^)]*)\)`)
)

func (h *Header) parse(dict string) error {
	m := descrRe.FindStringSubmatch(dict)
	if m == nil {
		return fmt.Errorf("%w: missing descr in %q", ErrInvalidHeader, dict)
	}
	h.Descr = m[1]

	m = fortranRe.FindStringSubmatch(dict)
	if m == nil {
		return fmt.Errorf("%w: missing fortran_order in %q", ErrInvalidHeader, dict)
	}
	h.FortranOrder = m[1] == "True"

	m = shapeRe.FindStringSubmatch(dict)
	if m == nil {
		return fmt.Errorf("%w: missing shape in %q", ErrInvalidHeader, dict)
	}
	h.Shape = []int{}
	for _, p := range strings.Split(m[1], ",") {
		p = strings.TrimSuffix(strings.TrimSpace(p), "L")
		if p == "" {
			continue
		}
		d, err := strconv.Atoi(p)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: bad dimension %q", ErrInvalidHeader, p)
		}
		h.Shape = append(h.Shape, d)
	}
	return nil
}

// Read decodes a .npy file into a float64 array.
func Read(r io.Reader) (*ndarray.Array, error) {
	return ReadLimited(r, -1)
}

// ReadLimited is like Read but rejects headers that describe more than limit
// bytes of data before reading any of it. A negative limit disables the check.
func ReadLimited(r io.Reader, limit int64) (*ndarray.Array, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	dt, err := parseDType(h.Descr)
	if err != nil {
		return nil, err
	}

	nbytes, err := dataSize(h.Shape, dt.size)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && nbytes > limit {
		return nil, fmt.Errorf("%w: shape %v needs %d bytes, only %d available", ErrInvalidHeader, h.Shape, nbytes, limit)
	}

	raw, err := readN(r, nbytes)
	if err != nil {
		return nil, fmt.Errorf("npy: read data: %w", err)
	}
	n := len(raw) / dt.size
	data := make([]float64, n)
	for i := range data {
		data[i] = dt.decode(raw[i*dt.size : (i+1)*dt.size])
	}

	if h.FortranOrder && len(h.Shape) > 1 {
		data = fortranToC(data, h.Shape)
	}
	return ndarray.New(h.Shape, data)
}

// dataSize returns the byte length of the data section.
func dataSize(shape []int, elem int) (int64, error) {
	if slices.Contains(shape, 0) {
		return 0, nil
	}
	n := int64(elem)
	for _, d := range shape {
		if n > math.MaxInt64/int64(d) {
			return 0, fmt.Errorf("%w: shape %v overflows", ErrInvalidHeader, shape)
		}
		n *= int64(d)
	}
	return n, nil
}

// readN reads exactly n bytes. The buffer grows with the input, so a
// corrupt length cannot force a large allocation up front.
func readN(r io.Reader, n int64) ([]byte, error) {
	var buf bytes.Buffer
	got, err := buf.ReadFrom(io.LimitReader(r, n))
	if err != nil {
		return nil, err
	}
	if got < n {
		return nil, io.ErrUnexpectedEOF
	}
	return buf.Bytes(), nil
}

type dtype struct {
	kind  byte
	size  int
	order binary.ByteOrder
}

func parseDType(descr string) (dtype, error) {
	if len(descr) < 2 {
		return dtype{}, fmt.Errorf("%w: %q", ErrUnsupportedDType, descr)
	}
	dt := dtype{order: binary.LittleEndian}
	rest := descr
	switch descr[0] {
	case '<', '=', '|':
		rest = descr[1:]
	case '>':
		dt.order = binary.BigEndian
		rest = descr[1:]
	}
	if len(rest) < 2 {
		return dtype{}, fmt.Errorf("%w: %q", ErrUnsupportedDType, descr)
	}
	dt.kind = rest[0]
	size, err := strconv.Atoi(rest[1:])
	if err != nil {
		return dtype{}, fmt.Errorf("%w: %q", ErrUnsupportedDType, descr)
	}
	dt.size = size

	ok := false
	switch dt.kind {
	case 'f':
		ok = size == 4 || size == 8
	case 'i', 'u':
		ok = size == 1 || size == 2 || size == 4 || size == 8
	case 'b':
		ok = size == 1
	}
	if !ok {
		return dtype{}, fmt.Errorf("%w: %q", ErrUnsupportedDType, descr)
	}
	return dt, nil
}

func (dt dtype) decode(b []byte) float64 {
	switch dt.kind {
	case 'f':
		if dt.size == 4 {
			return float64(math.Float32frombits(dt.order.Uint32(b)))
		}
		return math.Float64frombits(dt.order.Uint64(b))
	case 'i':
		switch dt.size {
		case 1:
			return float64(int8(b[0]))
		case 2:
			return float64(int16(dt.order.Uint16(b)))
		case 4:
			return float64(int32(dt.order.Uint32(b)))
		default:
			return float64(int64(dt.order.Uint64(b)))
		}
	case 'u':
		switch dt.size {
		case 1:
			return float64(b[0])
		case 2:
			return float64(dt.order.Uint16(b))
		case 4:
			return float64(dt.order.Uint32(b))
		default:
			return float64(dt.order.Uint64(b))
		}
	default: // 'b'
		if b[0] != 0 {
			return 1
		}
		return 0
	}
}

// fortranToC reorders column-major data into row-major order.
func fortranToC(src []float64, shape []int) []float64 {
	dst := make([]float64, len(src))
	idx := make([]int, len(shape))
	for c := range dst {
		// idx is the multi-index of position c in C order.
		f, stride := 0, 1
		for i, x := range idx {
			f += x * stride
			stride *= shape[i]
		}
		dst[c] = src[f]

		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return dst
}

// Package jsonl reads and writes line-delimited records.
//
// Each record is encoded independently with a codec.Codec and records are
// separated by a single newline. The writer emits no trailing newline, so an
// empty sequence produces an empty file.
package jsonl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hupe1980/jsondata/codec"
)

// DefaultMaxLineSize bounds a single encoded record.
const DefaultMaxLineSize = 64 << 20

// LineError reports a record that failed to decode.
type LineError struct {
	Line int // 1-based
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("jsonl: line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Writer encodes records one per line.
type Writer struct {
	bw    *bufio.Writer
	codec codec.Codec
	count int
}

// NewWriter returns a Writer. A nil codec selects codec.Default.
func NewWriter(w io.Writer, c codec.Codec) *Writer {
	if c == nil {
		c = codec.Default
	}
	return &Writer{bw: bufio.NewWriter(w), codec: c}
}

// Write encodes v as the next record.
func (w *Writer) Write(v any) error {
	b, err := w.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("jsonl: record %d: %w", w.count, err)
	}
	if w.count > 0 {
		if err := w.bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if _, err := w.bw.Write(b); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int { return w.count }

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.bw.Flush() }

// WriteAll encodes every item and flushes.
func WriteAll(w io.Writer, c codec.Codec, items []any) error {
	jw := NewWriter(w, c)
	for _, it := range items {
		if err := jw.Write(it); err != nil {
			return err
		}
	}
	return jw.Flush()
}

// Scanner iterates over the records of a stream.
type Scanner struct {
	sc    *bufio.Scanner
	codec codec.Codec
	line  int
}

// NewScanner returns a Scanner. A nil codec selects codec.Default and a
// non-positive maxLineSize selects DefaultMaxLineSize.
func NewScanner(r io.Reader, c codec.Codec, maxLineSize int) *Scanner {
	if c == nil {
		c = codec.Default
	}
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, maxLineSize)), maxLineSize)
	return &Scanner{sc: sc, codec: c}
}

// Scan advances to the next line.
func (s *Scanner) Scan() bool {
	if !s.sc.Scan() {
		return false
	}
	s.line++
	return true
}

// Line returns the 1-based number of the current line.
func (s *Scanner) Line() int { return s.line }

// Bytes returns the raw current line. The slice is only valid until the next Scan.
func (s *Scanner) Bytes() []byte { return s.sc.Bytes() }

// Value decodes the current line into a generic value.
func (s *Scanner) Value() (any, error) {
	v, err := codec.DecodeValue(s.codec, s.sc.Bytes())
	if err != nil {
		return nil, &LineError{Line: s.line, Err: err}
	}
	return v, nil
}

// Decode decodes the current line into v.
func (s *Scanner) Decode(v any) error {
	if err := s.codec.Unmarshal(s.sc.Bytes(), v); err != nil {
		return &LineError{Line: s.line, Err: err}
	}
	return nil
}

// Err returns the first non-EOF read error.
func (s *Scanner) Err() error {
	if err := s.sc.Err(); err != nil {
		return fmt.Errorf("jsonl: line %d: %w", s.line+1, err)
	}
	return nil
}

// ReadAll decodes every line of r.
func ReadAll(r io.Reader, c codec.Codec, maxLineSize int) ([]any, error) {
	s := NewScanner(r, c, maxLineSize)
	out := []any{}
	for s.Scan() {
		v, err := s.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAllInto decodes every line of r into a T.
func ReadAllInto[T any](r io.Reader, c codec.Codec, maxLineSize int) ([]T, error) {
	s := NewScanner(r, c, maxLineSize)
	out := []T{}
	for s.Scan() {
		var v T
		if err := s.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

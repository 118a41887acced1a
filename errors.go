package jsondata

import (
	"errors"
	"fmt"

	"github.com/hupe1980/jsondata/blobstore"
	"github.com/hupe1980/jsondata/jsonl"
)

var (
	// ErrNotFound is returned when a file does not exist.
	// It satisfies errors.Is(err, os.ErrNotExist).
	ErrNotFound = blobstore.ErrNotFound

	// ErrEmptyName is returned when Save or Read is called with an empty name.
	ErrEmptyName = errors.New("jsondata: empty name")

	// ErrMixedArrayList is returned when a sequence starts with an array but
	// holds other values too.
	ErrMixedArrayList = errors.New("jsondata: sequence mixes arrays and other values")
)

// DecodeError reports a record line that could not be decoded.
//
// The underlying codec error can be accessed via errors.Unwrap.
type DecodeError struct {
	Name  string
	Line  int // 1-based
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("jsondata: decode %s line %d: %v", e.Name, e.Line, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// translateError turns package-level decode errors into a DecodeError
// carrying the file name.
func translateError(name string, err error) error {
	if err == nil {
		return nil
	}

	var le *jsonl.LineError
	if errors.As(err, &le) {
		return &DecodeError{Name: name, Line: le.Line, cause: le.Err}
	}

	return err
}

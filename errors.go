package vfsio

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotFound is returned when a name has no backing storage.
	//
	// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
	// The default maps to `os.ErrNotExist`.
	ErrNotFound = os.ErrNotExist

	// ErrClosed is returned by every stream operation after Close.
	ErrClosed = errors.New("vfsio: stream is closed")

	// ErrReadOnly is returned when a backend cannot accept writes.
	ErrReadOnly = errors.New("vfsio: read-only file system")

	// ErrShortRead is returned by File.ReadAt when fewer bytes than requested exist.
	// The unread tail of the buffer is zero-filled.
	ErrShortRead = errors.New("vfsio: short read")

	// ErrInvalidRegion is returned when offset/count do not describe a region of the buffer.
	ErrInvalidRegion = errors.New("vfsio: invalid buffer region")

	// ErrInvalidPosition is returned for negative stream positions.
	ErrInvalidPosition = errors.New("vfsio: invalid position")

	// ErrInvalidWhence is returned by Seek for an unknown whence value.
	ErrInvalidWhence = errors.New("vfsio: invalid whence")
)

// PathError records a failed backend operation together with the name it touched.
//
// The original underlying error can be accessed via errors.Unwrap.
type PathError struct {
	Op   string
	Name string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("vfsio: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// WrapError wraps err in a *PathError unless err is nil.
func WrapError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	return &PathError{Op: op, Name: name, Err: err}
}

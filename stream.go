package vfsio

import (
	"context"
	"io"
)

// Stream is one open backing-store object accessed through a movable cursor.
//
// Every method reads or mutates the cursor, so a Stream is not safe for
// concurrent use. Callers serialize all access to a given handle.
type Stream interface {
	// Read reads up to len(p) bytes at the cursor and advances it by n.
	// At end of data it returns a short count or (0, io.EOF); n is never negative.
	Read(p []byte) (n int, err error)

	// Write writes all of p at the cursor, extending the length if needed.
	// A backend that cannot accept every byte returns an error.
	Write(p []byte) (n int, err error)

	// Flush commits buffered data to the backing store.
	Flush() error

	// Close releases the handle. Closing twice returns nil.
	io.Closer

	// Position returns the cursor.
	Position() (int64, error)

	// SetPosition moves the cursor. Positions past the length are allowed;
	// a later Write zero-fills the gap.
	SetPosition(pos int64) error

	// Length returns the logical length in bytes.
	Length() (int64, error)

	// Truncate sets the length. The cursor is left untouched.
	Truncate(size int64) error
}

// AccessMode selects the predicate evaluated by FileSystem.Access.
type AccessMode int

const (
	// AccessNonEmpty reports whether the name exists and holds at least one byte.
	AccessNonEmpty AccessMode = 0
	// AccessExists reports whether the name exists, regardless of size.
	AccessExists AccessMode = 1
	// AccessReadWrite is treated like AccessExists.
	AccessReadWrite AccessMode = 2
)

// FileSystem maps names to backing storage.
type FileSystem interface {
	// Open opens the storage addressed by name, creating it empty if absent.
	// Existing storage is never truncated and the cursor starts at 0.
	Open(ctx context.Context, name string) (Stream, error)

	// Delete removes the storage for name. Deleting a missing name is a no-op.
	Delete(ctx context.Context, name string) error

	// Access returns 1 or 0 according to mode. It never fails: absence and
	// backend errors both yield 0.
	Access(ctx context.Context, name string, mode AccessMode) int
}

// AccessResult evaluates the access predicate for a probed name.
//
// With AccessNonEmpty the result is 1 iff the name exists and size > 0.
// With any other mode the result is 1 iff the name exists.
func AccessResult(exists bool, size int64, mode AccessMode) int {
	if !exists {
		return 0
	}
	if mode == AccessNonEmpty && size <= 0 {
		return 0
	}
	return 1
}

// Stater is implemented by file systems that can report the size of a name.
// Missing names yield an error satisfying errors.Is(err, ErrNotFound).
type Stater interface {
	Stat(ctx context.Context, name string) (int64, error)
}

// AccessStat evaluates mode against the result of a Stat call. Any error,
// including absence, yields 0.
func AccessStat(size int64, err error, mode AccessMode) int {
	return AccessResult(err == nil, size, mode)
}

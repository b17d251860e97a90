// Package bufstream provides an in-memory byte buffer addressed by absolute
// offsets and a cursor-based stream over it.
package bufstream

import (
	"errors"
	"io"
	"sync"
)

// ErrNegativeSize is returned when truncating to a negative size.
var ErrNegativeSize = errors.New("bufstream: negative size")

// Accounter reserves and releases memory for buffer growth.
// *resource.Controller satisfies it.
type Accounter interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Buffer is a growable byte slice. Gaps created by writing or truncating past
// the end are zero-filled. Safe for concurrent use.
type Buffer struct {
	mu   sync.RWMutex
	data []byte
	acct Accounter
}

// New creates a buffer that takes ownership of data.
func New(data []byte) *Buffer {
	return &Buffer{data: data[:len(data):len(data)]}
}

// NewAccounted creates an empty buffer whose growth is reserved through acct.
func NewAccounted(acct Accounter) *Buffer {
	return &Buffer{acct: acct}
}

// Len returns the buffer length.
func (b *Buffer) Len() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int64(len(b.data))
}

// Snapshot returns a copy of the contents.
func (b *Buffer) Snapshot() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// ReadAt copies data at off into p. It returns io.EOF with a short count
// when fewer than len(p) bytes exist at off.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if off >= int64(len(b.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt writes p at off, growing the buffer when needed.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	end := off + int64(len(p))
	if err := b.resize(max(end, int64(len(b.data)))); err != nil {
		return 0, err
	}
	return copy(b.data[off:end], p), nil
}

// Truncate sets the length to size.
func (b *Buffer) Truncate(size int64) error {
	if size < 0 {
		return ErrNegativeSize
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resize(size)
}

// Release returns every reserved byte to the accounter and empties the buffer.
func (b *Buffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.resize(0)
}

func (b *Buffer) resize(size int64) error {
	cur := int64(len(b.data))
	switch {
	case size == cur:
		return nil
	case size < cur:
		clear(b.data[size:])
		b.data = b.data[:size]
		if b.acct != nil {
			b.acct.ReleaseMemory(cur - size)
		}
		return nil
	}

	if b.acct != nil {
		if err := b.acct.AcquireMemory(size - cur); err != nil {
			return err
		}
	}
	if size <= int64(cap(b.data)) {
		// Bytes past len are zero: shrinking clears them.
		b.data = b.data[:size]
		return nil
	}
	grown := make([]byte, size, max(size, 2*int64(cap(b.data))))
	copy(grown, b.data)
	b.data = grown
	return nil
}

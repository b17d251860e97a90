package bufstream

import (
	"io"

	"github.com/hupe1980/vfsio"
)

// CommitFunc persists the full contents of a dirty buffer.
type CommitFunc func(data []byte) error

// Cursor is a vfsio.Stream over a Buffer. Several cursors may share one
// Buffer; each keeps its own position.
type Cursor struct {
	buf    *Buffer
	pos    int64
	dirty  bool
	closed bool

	commit  CommitFunc
	onClose func()
}

// CursorOption configures a Cursor.
type CursorOption func(*Cursor)

// WithCommit sets the function Flush and Close call when the buffer changed.
func WithCommit(fn CommitFunc) CursorOption {
	return func(c *Cursor) {
		c.commit = fn
	}
}

// WithOnClose sets a function run once by the first Close.
func WithOnClose(fn func()) CursorOption {
	return func(c *Cursor) {
		c.onClose = fn
	}
}

// NewCursor creates a cursor positioned at 0.
func NewCursor(buf *Buffer, optFns ...CursorOption) *Cursor {
	c := &Cursor{buf: buf}
	for _, fn := range optFns {
		fn(c)
	}
	return c
}

// Read implements vfsio.Stream.
func (c *Cursor) Read(p []byte) (int, error) {
	if c.closed {
		return 0, vfsio.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, _ := c.buf.ReadAt(p, c.pos)
	c.pos += int64(n)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write implements vfsio.Stream.
func (c *Cursor) Write(p []byte) (int, error) {
	if c.closed {
		return 0, vfsio.ErrClosed
	}
	n, err := c.buf.WriteAt(p, c.pos)
	if err != nil {
		return 0, err
	}
	c.pos += int64(n)
	if n > 0 {
		c.dirty = true
	}
	return n, nil
}

// Flush implements vfsio.Stream.
func (c *Cursor) Flush() error {
	if c.closed {
		return vfsio.ErrClosed
	}
	return c.flush()
}

func (c *Cursor) flush() error {
	if !c.dirty || c.commit == nil {
		c.dirty = false
		return nil
	}
	if err := c.commit(c.buf.Snapshot()); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Close implements vfsio.Stream. Pending changes are committed first.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	err := c.flush()
	c.closed = true
	if c.onClose != nil {
		c.onClose()
	}
	return err
}

// Position implements vfsio.Stream.
func (c *Cursor) Position() (int64, error) {
	if c.closed {
		return 0, vfsio.ErrClosed
	}
	return c.pos, nil
}

// SetPosition implements vfsio.Stream.
func (c *Cursor) SetPosition(pos int64) error {
	if c.closed {
		return vfsio.ErrClosed
	}
	if pos < 0 {
		return vfsio.ErrInvalidPosition
	}
	c.pos = pos
	return nil
}

// Length implements vfsio.Stream.
func (c *Cursor) Length() (int64, error) {
	if c.closed {
		return 0, vfsio.ErrClosed
	}
	return c.buf.Len(), nil
}

// Truncate implements vfsio.Stream.
func (c *Cursor) Truncate(size int64) error {
	if c.closed {
		return vfsio.ErrClosed
	}
	if size < 0 {
		return vfsio.ErrInvalidPosition
	}
	if err := c.buf.Truncate(size); err != nil {
		return err
	}
	c.dirty = true
	return nil
}

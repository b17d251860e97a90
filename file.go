package vfsio

import (
	"context"
	"fmt"
)

// JournalBufferSize is the size of the write-coalescing buffer of journal files.
const JournalBufferSize = 8192

// OpenFlag configures a File.
type OpenFlag uint32

const (
	// OpenJournal coalesces sequential writes into a JournalBufferSize buffer.
	OpenJournal OpenFlag = 1 << iota
)

// File is the positioned handle a storage engine works with. It layers
// ReadAt/WriteAt on top of a Stream via PositionedRead and PositionedWrite.
//
// Like the underlying stream, a File is not safe for concurrent use.
type File struct {
	name   string
	stream Stream
	closed bool

	// Pending sequential writes; only allocated for OpenJournal.
	buf    []byte
	bufLen int
	bufOff int64
}

// OpenFile opens name on fs and wraps the resulting stream.
func OpenFile(ctx context.Context, fs FileSystem, name string, flags OpenFlag) (*File, error) {
	s, err := fs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	f := NewFile(s, flags)
	f.name = name
	return f, nil
}

// NewFile wraps an already open stream. The File takes ownership of s.
func NewFile(s Stream, flags OpenFlag) *File {
	f := &File{stream: s}
	if flags&OpenJournal != 0 {
		f.buf = make([]byte, JournalBufferSize)
	}
	return f
}

// Name returns the name the file was opened with, if any.
func (f *File) Name() string {
	return f.name
}

// ReadAt reads len(p) bytes at off. If fewer bytes exist, the tail of p is
// zero-filled and ErrShortRead is returned together with the bytes read.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	if err := f.flushBuffer(); err != nil {
		return 0, err
	}

	n, err := PositionedRead(f.stream, p, 0, len(p), off)
	if err != nil {
		return n, WrapError("read", f.name, err)
	}
	if n < len(p) {
		clear(p[n:])
		return n, ErrShortRead
	}
	return n, nil
}

// WriteAt writes p at off. Journal files buffer runs of contiguous writes.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPosition, off)
	}
	if f.buf == nil {
		return f.directWrite(p, off)
	}

	written := 0
	for written < len(p) {
		// A full buffer or a non-contiguous write ends the current run.
		if f.bufLen == len(f.buf) || (f.bufLen > 0 && f.bufOff+int64(f.bufLen) != off) {
			if err := f.flushBuffer(); err != nil {
				return written, err
			}
		}
		if f.bufLen == 0 {
			f.bufOff = off
		}

		n := copy(f.buf[f.bufLen:], p[written:])
		f.bufLen += n
		written += n
		off += int64(n)
	}
	return written, nil
}

// Truncate sets the file size.
func (f *File) Truncate(size int64) error {
	if f.closed {
		return ErrClosed
	}
	if err := f.flushBuffer(); err != nil {
		return err
	}
	return WrapError("truncate", f.name, f.stream.Truncate(size))
}

// Sync writes pending data and flushes the stream.
func (f *File) Sync() error {
	if f.closed {
		return ErrClosed
	}
	if err := f.flushBuffer(); err != nil {
		return err
	}
	return WrapError("sync", f.name, f.stream.Flush())
}

// Size returns the file size including pending writes.
func (f *File) Size() (int64, error) {
	if f.closed {
		return 0, ErrClosed
	}
	if err := f.flushBuffer(); err != nil {
		return 0, err
	}
	size, err := f.stream.Length()
	if err != nil {
		return 0, WrapError("size", f.name, err)
	}
	return size, nil
}

// Close writes pending data and closes the stream. It is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	err := f.flushBuffer()
	if cerr := f.stream.Close(); cerr != nil && err == nil {
		err = WrapError("close", f.name, cerr)
	}
	return err
}

func (f *File) flushBuffer() error {
	if f.bufLen == 0 {
		return nil
	}
	n := f.bufLen
	f.bufLen = 0
	_, err := f.directWrite(f.buf[:n], f.bufOff)
	return err
}

func (f *File) directWrite(p []byte, off int64) (int, error) {
	n, err := PositionedWrite(f.stream, p, 0, len(p), off)
	if err != nil {
		return n, WrapError("write", f.name, err)
	}
	return n, nil
}

package remote

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/internal/bufstream"
	"github.com/hupe1980/vfsio/compress"
)

type stream struct {
	ctx  context.Context
	fs   *FS
	name string
	key  string

	// remoteSize is the object size while buf is nil.
	remoteSize int64
	buf        *bufstream.Buffer

	pos    int64
	dirty  bool
	closed bool
}

func newStream(ctx context.Context, fs *FS, name, key string, size int64) *stream {
	s := &stream{
		ctx:        ctx,
		fs:         fs,
		name:       name,
		key:        key,
		remoteSize: size,
	}
	if size == 0 {
		s.buf = bufstream.New(nil)
	}
	return s
}

// load materializes the object in memory.
func (s *stream) load() error {
	if s.buf != nil {
		return nil
	}
	data, err := s.fs.download(s.ctx, s.key)
	if err != nil {
		return vfsio.WrapError("download", s.name, err)
	}
	s.buf = bufstream.New(data)
	return nil
}

func (s *stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	if s.buf == nil && s.fs.compression == compress.None {
		return s.readRange(p)
	}

	if err := s.load(); err != nil {
		return 0, err
	}
	n, _ := s.buf.ReadAt(p, s.pos)
	s.pos += int64(n)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *stream) readRange(p []byte) (int, error) {
	if s.pos >= s.remoteSize {
		return 0, io.EOF
	}
	length := min(int64(len(p)), s.remoteSize-s.pos)

	rc, err := s.fs.client.GetRange(s.ctx, s.key, s.pos, length)
	if err != nil {
		return 0, vfsio.WrapError("read", s.name, err)
	}
	defer func() { _ = rc.Close() }()

	n, err := io.ReadFull(rc, p[:length])
	s.pos += int64(n)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return n, vfsio.WrapError("read", s.name, err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *stream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	if err := s.load(); err != nil {
		return 0, err
	}
	n, err := s.buf.WriteAt(p, s.pos)
	if err != nil {
		return 0, err
	}
	s.pos += int64(n)
	if n > 0 {
		s.dirty = true
	}
	return n, nil
}

func (s *stream) Flush() error {
	if s.closed {
		return vfsio.ErrClosed
	}
	return s.flush()
}

func (s *stream) flush() error {
	if !s.dirty {
		return nil
	}
	if err := s.fs.upload(s.ctx, s.key, s.buf.Snapshot()); err != nil {
		return vfsio.WrapError("upload", s.name, err)
	}
	s.dirty = false
	return nil
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	err := s.flush()
	s.closed = true
	s.buf = nil
	return err
}

func (s *stream) Position() (int64, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	return s.pos, nil
}

func (s *stream) SetPosition(pos int64) error {
	if s.closed {
		return vfsio.ErrClosed
	}
	if pos < 0 {
		return vfsio.ErrInvalidPosition
	}
	s.pos = pos
	return nil
}

func (s *stream) Length() (int64, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	if s.buf == nil && s.fs.compression == compress.None {
		return s.remoteSize, nil
	}
	if err := s.load(); err != nil {
		return 0, err
	}
	return s.buf.Len(), nil
}

func (s *stream) Truncate(size int64) error {
	if s.closed {
		return vfsio.ErrClosed
	}
	if size < 0 {
		return vfsio.ErrInvalidPosition
	}
	if err := s.load(); err != nil {
		return err
	}
	if err := s.buf.Truncate(size); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

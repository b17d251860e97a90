// Package billy adapts a go-billy filesystem to vfsio.FileSystem.
//
//	fs := billy.New(memfs.New())
//	fs := billy.New(osfs.New("/var/lib/db"))
package billy

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/hupe1980/vfsio"
)

var (
	_ vfsio.FileSystem = (*FS)(nil)
	_ vfsio.Stater     = (*FS)(nil)
)

// FS implements vfsio.FileSystem on a billy.Filesystem.
type FS struct {
	fs   billy.Filesystem
	perm os.FileMode
}

// New wraps fs. Files are created with mode 0o644.
func New(fs billy.Filesystem) *FS {
	return &FS{fs: fs, perm: 0o644}
}

// Open implements vfsio.FileSystem.
func (b *FS) Open(_ context.Context, name string) (vfsio.Stream, error) {
	f, err := b.fs.OpenFile(name, os.O_RDWR|os.O_CREATE, b.perm)
	if err != nil {
		return nil, vfsio.WrapError("open", name, err)
	}
	return &stream{file: f, fs: b.fs, name: name}, nil
}

// Delete implements vfsio.FileSystem.
func (b *FS) Delete(_ context.Context, name string) error {
	if err := b.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return vfsio.WrapError("remove", name, err)
	}
	return nil
}

// Access implements vfsio.FileSystem.
func (b *FS) Access(ctx context.Context, name string, mode vfsio.AccessMode) int {
	size, err := b.Stat(ctx, name)
	return vfsio.AccessStat(size, err, mode)
}

// Stat implements vfsio.Stater.
func (b *FS) Stat(_ context.Context, name string) (int64, error) {
	info, err := b.fs.Stat(name)
	if err != nil {
		return 0, vfsio.WrapError("stat", name, err)
	}
	if info.IsDir() {
		return 0, vfsio.WrapError("stat", name, vfsio.ErrNotFound)
	}
	return info.Size(), nil
}

type syncer interface {
	Sync() error
}

// stream uses the billy file's own offset as its cursor.
type stream struct {
	file   billy.File
	fs     billy.Filesystem
	name   string
	closed bool
}

func (s *stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	n, err := s.file.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, vfsio.WrapError("read", s.name, err)
	}
	return n, err
}

func (s *stream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	n, err := s.file.Write(p)
	if err != nil {
		return n, vfsio.WrapError("write", s.name, err)
	}
	return n, nil
}

func (s *stream) Flush() error {
	if s.closed {
		return vfsio.ErrClosed
	}
	if f, ok := s.file.(syncer); ok {
		return vfsio.WrapError("sync", s.name, f.Sync())
	}
	return nil
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return vfsio.WrapError("close", s.name, s.file.Close())
}

func (s *stream) Position() (int64, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	pos, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, vfsio.WrapError("seek", s.name, err)
	}
	return pos, nil
}

func (s *stream) SetPosition(pos int64) error {
	if s.closed {
		return vfsio.ErrClosed
	}
	if pos < 0 {
		return vfsio.ErrInvalidPosition
	}
	if _, err := s.file.Seek(pos, io.SeekStart); err != nil {
		return vfsio.WrapError("seek", s.name, err)
	}
	return nil
}

func (s *stream) Length() (int64, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	info, err := s.fs.Stat(s.name)
	if err != nil {
		return 0, vfsio.WrapError("stat", s.name, err)
	}
	return info.Size(), nil
}

func (s *stream) Truncate(size int64) error {
	if s.closed {
		return vfsio.ErrClosed
	}
	if size < 0 {
		return vfsio.ErrInvalidPosition
	}
	return vfsio.WrapError("truncate", s.name, s.file.Truncate(size))
}

package store

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/internal/mmap"
)

// ErrInvalidName is returned for names that would escape the root directory.
var ErrInvalidName = errors.New("store: invalid name")

var (
	_ vfsio.FileSystem = (*LocalFS)(nil)
	_ vfsio.Stater     = (*LocalFS)(nil)
)

// LocalFS implements FileSystem on the local file system.
type LocalFS struct {
	root     string
	perm     os.FileMode
	readOnly bool
}

// LocalOption configures a LocalFS.
type LocalOption func(*LocalFS)

// WithReadOnly serves existing files through read-only memory mappings.
// Open fails for missing names and Delete returns vfsio.ErrReadOnly.
func WithReadOnly() LocalOption {
	return func(l *LocalFS) {
		l.readOnly = true
	}
}

// WithPerm sets the permission bits of created files. Default 0o644.
func WithPerm(perm os.FileMode) LocalOption {
	return func(l *LocalFS) {
		l.perm = perm
	}
}

// NewLocalFS creates a LocalFS rooted at the given directory, creating it
// unless the file system is read-only.
func NewLocalFS(root string, optFns ...LocalOption) (*LocalFS, error) {
	l := &LocalFS{root: root, perm: 0o644}
	for _, fn := range optFns {
		fn(l)
	}

	if !l.readOnly {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, vfsio.WrapError("mkdir", root, err)
		}
	}
	return l, nil
}

// Root returns the root directory.
func (l *LocalFS) Root() string {
	return l.root
}

func (l *LocalFS) path(op, name string) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", vfsio.WrapError(op, name, ErrInvalidName)
	}
	return filepath.Join(l.root, rel), nil
}

// Open opens name, creating it (and missing parent directories) if absent.
func (l *LocalFS) Open(_ context.Context, name string) (vfsio.Stream, error) {
	path, err := l.path("open", name)
	if err != nil {
		return nil, err
	}

	if l.readOnly {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, vfsio.WrapError("open", name, err)
		}
		_ = m.Advise(mmap.AccessRandom)
		return &mappedStream{m: m}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, vfsio.WrapError("open", name, err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, l.perm)
	if err != nil {
		return nil, vfsio.WrapError("open", name, err)
	}
	return &fileStream{f: f, name: name}, nil
}

// Delete removes name. Missing names are ignored.
func (l *LocalFS) Delete(_ context.Context, name string) error {
	if l.readOnly {
		return vfsio.WrapError("delete", name, vfsio.ErrReadOnly)
	}
	path, err := l.path("delete", name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return vfsio.WrapError("delete", name, err)
	}
	return nil
}

// Access implements vfsio.FileSystem.
func (l *LocalFS) Access(ctx context.Context, name string, mode vfsio.AccessMode) int {
	size, err := l.Stat(ctx, name)
	return vfsio.AccessStat(size, err, mode)
}

// Stat returns the size of the file backing name. Directories count as absent.
func (l *LocalFS) Stat(_ context.Context, name string) (int64, error) {
	path, err := l.path("stat", name)
	if err != nil {
		return 0, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0, vfsio.WrapError("stat", name, err)
	}
	if fi.IsDir() {
		return 0, vfsio.WrapError("stat", name, vfsio.ErrNotFound)
	}
	return fi.Size(), nil
}

// fileStream keeps its own cursor and uses positioned file I/O.
type fileStream struct {
	f      *os.File
	name   string
	pos    int64
	closed bool
}

func (s *fileStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := s.f.ReadAt(p, s.pos)
	s.pos += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, vfsio.WrapError("read", s.name, err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *fileStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	n, err := s.f.WriteAt(p, s.pos)
	s.pos += int64(n)
	if err != nil {
		return n, vfsio.WrapError("write", s.name, err)
	}
	return n, nil
}

func (s *fileStream) Flush() error {
	if s.closed {
		return vfsio.ErrClosed
	}
	return vfsio.WrapError("sync", s.name, s.f.Sync())
}

func (s *fileStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return vfsio.WrapError("close", s.name, s.f.Close())
}

func (s *fileStream) Position() (int64, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	return s.pos, nil
}

func (s *fileStream) SetPosition(pos int64) error {
	if s.closed {
		return vfsio.ErrClosed
	}
	if pos < 0 {
		return vfsio.ErrInvalidPosition
	}
	s.pos = pos
	return nil
}

func (s *fileStream) Length() (int64, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	fi, err := s.f.Stat()
	if err != nil {
		return 0, vfsio.WrapError("stat", s.name, err)
	}
	return fi.Size(), nil
}

func (s *fileStream) Truncate(size int64) error {
	if s.closed {
		return vfsio.ErrClosed
	}
	if size < 0 {
		return vfsio.ErrInvalidPosition
	}
	return vfsio.WrapError("truncate", s.name, s.f.Truncate(size))
}

// mappedStream is the read-only stream of a LocalFS opened WithReadOnly.
type mappedStream struct {
	m      *mmap.Mapping
	pos    int64
	closed bool
}

func (s *mappedStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, _ := s.m.ReadAt(p, s.pos)
	s.pos += int64(n)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *mappedStream) Write([]byte) (int, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	return 0, vfsio.ErrReadOnly
}

func (s *mappedStream) Flush() error {
	if s.closed {
		return vfsio.ErrClosed
	}
	return nil
}

func (s *mappedStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.m.Close()
}

func (s *mappedStream) Position() (int64, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	return s.pos, nil
}

func (s *mappedStream) SetPosition(pos int64) error {
	if s.closed {
		return vfsio.ErrClosed
	}
	if pos < 0 {
		return vfsio.ErrInvalidPosition
	}
	s.pos = pos
	return nil
}

func (s *mappedStream) Length() (int64, error) {
	if s.closed {
		return 0, vfsio.ErrClosed
	}
	return s.m.Len(), nil
}

func (s *mappedStream) Truncate(int64) error {
	if s.closed {
		return vfsio.ErrClosed
	}
	return vfsio.ErrReadOnly
}

package vfsio

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/hupe1980/vfsio/resource"
)

// Instrument wraps fs with structured logging, metrics and resource limits.
// The returned FileSystem implements Stater.
func Instrument(fs FileSystem, optFns ...Option) FileSystem {
	o := applyOptions(optFns)
	return &instrumentedFS{
		inner:   fs,
		logger:  o.logger,
		metrics: o.metricsCollector,
		rc:      o.rc,
	}
}

type instrumentedFS struct {
	inner   FileSystem
	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller
}

func (fs *instrumentedFS) Open(ctx context.Context, name string) (Stream, error) {
	start := time.Now()

	if err := fs.rc.AcquireStream(ctx); err != nil {
		fs.metrics.RecordOpen(time.Since(start), err)
		fs.logger.LogOpen(ctx, name, err)
		return nil, err
	}

	s, err := fs.inner.Open(ctx, name)
	fs.metrics.RecordOpen(time.Since(start), err)
	fs.logger.LogOpen(ctx, name, err)
	if err != nil {
		fs.rc.ReleaseStream()
		return nil, err
	}

	return &instrumentedStream{
		inner: s,
		fs:    fs,
		ctx:   ctx,
		name:  name,
	}, nil
}

func (fs *instrumentedFS) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := fs.inner.Delete(ctx, name)
	fs.metrics.RecordDelete(time.Since(start), err)
	fs.logger.LogDelete(ctx, name, err)
	return err
}

func (fs *instrumentedFS) Access(ctx context.Context, name string, mode AccessMode) int {
	start := time.Now()

	var result int
	if st, ok := fs.inner.(Stater); ok {
		size, err := st.Stat(ctx, name)
		if err != nil && !errors.Is(err, ErrNotFound) {
			fs.logger.WarnContext(ctx, "access probe failed", "name", name, "error", err)
		}
		result = AccessStat(size, err, mode)
	} else {
		result = fs.inner.Access(ctx, name, mode)
	}

	fs.metrics.RecordAccess(mode, result, time.Since(start))
	fs.logger.LogAccess(ctx, name, mode, result)
	return result
}

func (fs *instrumentedFS) Stat(ctx context.Context, name string) (int64, error) {
	st, ok := fs.inner.(Stater)
	if !ok {
		if fs.inner.Access(ctx, name, AccessExists) == 0 {
			return 0, ErrNotFound
		}
		s, err := fs.inner.Open(ctx, name)
		if err != nil {
			return 0, err
		}
		defer s.Close()
		return s.Length()
	}
	return st.Stat(ctx, name)
}

// instrumentedStream records every call against its file system's collectors.
type instrumentedStream struct {
	inner  Stream
	fs     *instrumentedFS
	ctx    context.Context
	name   string
	closed atomic.Bool

	read    atomic.Int64
	written atomic.Int64
}

func (s *instrumentedStream) Read(p []byte) (int, error) {
	if err := s.fs.rc.AcquireIO(s.ctx, len(p)); err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := s.inner.Read(p)
	s.read.Add(int64(n))
	s.fs.metrics.RecordRead(n, time.Since(start), ignoreEOF(err))
	return n, err
}

func (s *instrumentedStream) Write(p []byte) (int, error) {
	if err := s.fs.rc.AcquireIO(s.ctx, len(p)); err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := s.inner.Write(p)
	s.written.Add(int64(n))
	s.fs.metrics.RecordWrite(n, time.Since(start), err)
	return n, err
}

func (s *instrumentedStream) Flush() error {
	start := time.Now()
	err := s.inner.Flush()
	s.fs.metrics.RecordFlush(time.Since(start), err)
	s.fs.logger.LogFlush(s.ctx, s.name, err)
	return err
}

func (s *instrumentedStream) Close() error {
	err := s.inner.Close()
	if s.closed.CompareAndSwap(false, true) {
		s.fs.rc.ReleaseStream()
		s.fs.logger.LogClose(s.ctx, s.name, s.read.Load(), s.written.Load(), err)
	}
	return err
}

func (s *instrumentedStream) Position() (int64, error) {
	return s.inner.Position()
}

func (s *instrumentedStream) SetPosition(pos int64) error {
	return s.inner.SetPosition(pos)
}

func (s *instrumentedStream) Length() (int64, error) {
	return s.inner.Length()
}

func (s *instrumentedStream) Truncate(size int64) error {
	return s.inner.Truncate(size)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

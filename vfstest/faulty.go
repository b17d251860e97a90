package vfstest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hupe1980/vfsio"
)

// ErrInjected is returned by FaultyFS when a rule fires without its own error.
var ErrInjected = errors.New("vfstest: injected fault")

// Fault defines the failures injected into streams opened through FaultyFS.
type Fault struct {
	FailAfterBytes    int64 // Fail writes once this many bytes went to the stream. -1 disables.
	FailOnFlush       bool
	FailOnClose       bool
	FailOnOpen        bool
	FailOnSetPosition bool
	Err               error
}

// NoFault is a Fault that never fires.
var NoFault = Fault{FailAfterBytes: -1}

// FaultyFS wraps a FileSystem and injects errors into matching names.
type FaultyFS struct {
	FS vfsio.FileSystem

	mu      sync.Mutex
	rules   map[string]Fault // name substring -> fault
	written int64
}

// NewFaultyFS wraps fs. Without rules it behaves exactly like fs.
func NewFaultyFS(fs vfsio.FileSystem) *FaultyFS {
	return &FaultyFS{
		FS:    fs,
		rules: make(map[string]Fault),
	}
}

// AddRule injects fault into every stream whose name contains pattern.
// Streams opened before the call are unaffected.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// Written returns the bytes accepted across all streams.
func (f *FaultyFS) Written() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

func (f *FaultyFS) faultFor(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()

	fault := NoFault
	matched := ""
	for pattern, rule := range f.rules {
		// Longest match wins so results do not depend on map order.
		if strings.Contains(name, pattern) && len(pattern) >= len(matched) {
			fault, matched = rule, pattern
		}
	}
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	return fault
}

// Open implements vfsio.FileSystem.
func (f *FaultyFS) Open(ctx context.Context, name string) (vfsio.Stream, error) {
	fault := f.faultFor(name)
	if fault.FailOnOpen {
		return nil, vfsio.WrapError("open", name, fault.Err)
	}
	s, err := f.FS.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &faultyStream{Stream: s, fs: f, fault: fault}, nil
}

// Delete implements vfsio.FileSystem.
func (f *FaultyFS) Delete(ctx context.Context, name string) error {
	return f.FS.Delete(ctx, name)
}

// Access implements vfsio.FileSystem.
func (f *FaultyFS) Access(ctx context.Context, name string, mode vfsio.AccessMode) int {
	return f.FS.Access(ctx, name, mode)
}

type faultyStream struct {
	vfsio.Stream
	fs      *FaultyFS
	fault   Fault
	written int64
}

func (s *faultyStream) Write(p []byte) (int, error) {
	if s.fault.FailAfterBytes >= 0 && s.written+int64(len(p)) > s.fault.FailAfterBytes {
		return 0, s.fault.Err
	}
	n, err := s.Stream.Write(p)
	if n > 0 {
		s.written += int64(n)
		s.fs.mu.Lock()
		s.fs.written += int64(n)
		s.fs.mu.Unlock()
	}
	return n, err
}

func (s *faultyStream) Flush() error {
	if s.fault.FailOnFlush {
		return s.fault.Err
	}
	return s.Stream.Flush()
}

func (s *faultyStream) SetPosition(pos int64) error {
	if s.fault.FailOnSetPosition {
		return s.fault.Err
	}
	return s.Stream.SetPosition(pos)
}

func (s *faultyStream) Close() error {
	if s.fault.FailOnClose {
		_ = s.Stream.Close()
		return s.fault.Err
	}
	return s.Stream.Close()
}

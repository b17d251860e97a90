package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/btree"
	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/internal/bufstream"
	"github.com/hupe1980/vfsio/resource"
)

var (
	_ vfsio.FileSystem = (*MemoryFS)(nil)
	_ vfsio.Stater     = (*MemoryFS)(nil)
)

// memEntry is one name in the index. Handles opened on the same name share buf.
type memEntry struct {
	name     string
	buf      *bufstream.Buffer
	refs     int
	unlinked bool
}

func lessEntry(a, b *memEntry) bool {
	return a.name < b.name
}

// MemoryFS is an in-memory FileSystem.
// Thread-safe for concurrent use of distinct handles.
type MemoryFS struct {
	mu    sync.RWMutex
	index *btree.BTreeG[*memEntry]
	rc    *resource.Controller
}

// MemoryOption configures a MemoryFS.
type MemoryOption func(*MemoryFS)

// WithMemoryController reserves buffer growth through rc. Writes that would
// exceed its memory limit fail with resource.ErrMemoryLimitExceeded.
func WithMemoryController(rc *resource.Controller) MemoryOption {
	return func(m *MemoryFS) {
		m.rc = rc
	}
}

// NewMemoryFS creates an empty in-memory file system.
func NewMemoryFS(optFns ...MemoryOption) *MemoryFS {
	m := &MemoryFS{
		index: btree.NewG(32, lessEntry),
	}
	for _, fn := range optFns {
		fn(m)
	}
	return m
}

// Open opens name, creating it empty if absent.
func (m *MemoryFS) Open(_ context.Context, name string) (vfsio.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.index.Get(&memEntry{name: name})
	if !ok {
		e = &memEntry{name: name, buf: m.newBuffer()}
		m.index.ReplaceOrInsert(e)
	}
	e.refs++

	return bufstream.NewCursor(e.buf, bufstream.WithOnClose(func() {
		m.release(e)
	})), nil
}

func (m *MemoryFS) newBuffer() *bufstream.Buffer {
	if m.rc == nil {
		return bufstream.New(nil)
	}
	return bufstream.NewAccounted(m.rc)
}

func (m *MemoryFS) release(e *memEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.unlinked && e.refs == 0 {
		e.buf.Release()
	}
}

// Delete unlinks name. Open handles keep reading and writing the unlinked
// data until they are closed.
func (m *MemoryFS) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.index.Delete(&memEntry{name: name})
	if !ok {
		return nil
	}
	e.unlinked = true
	if e.refs == 0 {
		e.buf.Release()
	}
	return nil
}

// Access implements vfsio.FileSystem.
func (m *MemoryFS) Access(ctx context.Context, name string, mode vfsio.AccessMode) int {
	size, err := m.Stat(ctx, name)
	return vfsio.AccessStat(size, err, mode)
}

// Stat returns the current length of name.
func (m *MemoryFS) Stat(_ context.Context, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.index.Get(&memEntry{name: name})
	if !ok {
		return 0, vfsio.ErrNotFound
	}
	return e.buf.Len(), nil
}

// List returns the names starting with prefix in ascending order.
func (m *MemoryFS) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	m.index.AscendGreaterOrEqual(&memEntry{name: prefix}, func(e *memEntry) bool {
		if !strings.HasPrefix(e.name, prefix) {
			return false
		}
		names = append(names, e.name)
		return true
	})
	return names, nil
}

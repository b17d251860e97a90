// Package remote implements vfsio.FileSystem over an object store.
//
// Objects are immutable blobs, so a stream starts out reading byte ranges
// straight from the store. The first mutation downloads the whole object
// into memory; Flush and Close upload it again when it changed.
package remote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/compress"
)

// Client is the minimal object-store API. Missing keys yield errors
// satisfying errors.Is(err, vfsio.ErrNotFound).
type Client interface {
	// Size returns the stored size of key.
	Size(ctx context.Context, key string) (int64, error)
	// GetRange returns length bytes of key starting at off.
	GetRange(ctx context.Context, key string, off, length int64) (io.ReadCloser, error)
	// Get returns the whole object.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Put replaces key with data.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// List returns all keys starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

var (
	_ vfsio.FileSystem = (*FS)(nil)
	_ vfsio.Stater     = (*FS)(nil)
)

// FS maps names to objects under a key prefix.
type FS struct {
	client      Client
	prefix      string
	compression compress.Type
}

// New creates an FS. prefix is joined in front of every name.
func New(client Client, prefix string, compression compress.Type) *FS {
	return &FS{
		client:      client,
		prefix:      prefix,
		compression: compression,
	}
}

func (fs *FS) key(name string) string {
	if fs.prefix == "" {
		return name
	}
	return path.Join(fs.prefix, name)
}

// Open implements vfsio.FileSystem. Missing names are created as empty
// objects. The stream uses ctx for all of its network calls.
func (fs *FS) Open(ctx context.Context, name string) (vfsio.Stream, error) {
	key := fs.key(name)

	size, err := fs.client.Size(ctx, key)
	if errors.Is(err, vfsio.ErrNotFound) {
		if err := fs.client.Put(ctx, key, nil); err != nil {
			return nil, vfsio.WrapError("create", name, err)
		}
		return newStream(ctx, fs, name, key, 0), nil
	}
	if err != nil {
		return nil, vfsio.WrapError("open", name, err)
	}
	return newStream(ctx, fs, name, key, size), nil
}

// Delete implements vfsio.FileSystem.
func (fs *FS) Delete(ctx context.Context, name string) error {
	err := fs.client.Delete(ctx, fs.key(name))
	if err != nil && !errors.Is(err, vfsio.ErrNotFound) {
		return vfsio.WrapError("delete", name, err)
	}
	return nil
}

// Access implements vfsio.FileSystem.
func (fs *FS) Access(ctx context.Context, name string, mode vfsio.AccessMode) int {
	size, err := fs.Stat(ctx, name)
	return vfsio.AccessStat(size, err, mode)
}

// Stat reports the stored object size. With compression it is the encoded
// size, which is zero exactly when the file is empty.
func (fs *FS) Stat(ctx context.Context, name string) (int64, error) {
	size, err := fs.client.Size(ctx, fs.key(name))
	if err != nil {
		return 0, vfsio.WrapError("stat", name, err)
	}
	return size, nil
}

// List returns the names under prefix in ascending order.
func (fs *FS) List(ctx context.Context, prefix string) ([]string, error) {
	root := strings.TrimSuffix(fs.prefix, "/")
	if root != "" {
		root += "/"
	}

	keys, err := fs.client.List(ctx, root+prefix)
	if err != nil {
		return nil, vfsio.WrapError("list", prefix, err)
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name := strings.TrimPrefix(k, root); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (fs *FS) download(ctx context.Context, key string) ([]byte, error) {
	rc, err := fs.client.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, err
	}
	return compress.Decode(buf.Bytes(), fs.compression)
}

func (fs *FS) upload(ctx context.Context, key string, data []byte) error {
	encoded, err := compress.Encode(data, fs.compression)
	if err != nil {
		return err
	}
	return fs.client.Put(ctx, key, encoded)
}

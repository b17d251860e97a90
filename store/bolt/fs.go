// Package bolt stores every name as one key of a bbolt bucket.
//
// A stream loads the value into memory on Open and writes it back on Flush
// and Close. Handles on the same name do not share state: the last handle
// to flush wins. Flushing a handle whose name was deleted is a no-op.
package bolt

import (
	"bytes"
	"context"
	"time"

	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/internal/bufstream"
	"go.etcd.io/bbolt"
)

// DefaultBucket is the bucket used unless WithBucket is given.
const DefaultBucket = "vfsio"

var (
	_ vfsio.FileSystem = (*FS)(nil)
	_ vfsio.Stater     = (*FS)(nil)
)

// FS implements vfsio.FileSystem on a bbolt database.
type FS struct {
	db     *bbolt.DB
	bucket []byte
	ownsDB bool
}

// Option configures an FS.
type Option func(*FS)

// WithBucket sets the bucket holding the files.
func WithBucket(name string) Option {
	return func(fs *FS) {
		fs.bucket = []byte(name)
	}
}

// Open opens (or creates) the database at path. Close releases it.
func Open(path string, optFns ...Option) (*FS, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, vfsio.WrapError("open", path, err)
	}
	fs, err := New(db, optFns...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	fs.ownsDB = true
	return fs, nil
}

// New uses an already open database. The caller keeps ownership of db.
func New(db *bbolt.DB, optFns ...Option) (*FS, error) {
	fs := &FS{db: db, bucket: []byte(DefaultBucket)}
	for _, fn := range optFns {
		fn(fs)
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(fs.bucket)
		return err
	})
	if err != nil {
		return nil, vfsio.WrapError("create bucket", string(fs.bucket), err)
	}
	return fs, nil
}

// Close closes the database if it was opened by Open.
func (fs *FS) Close() error {
	if !fs.ownsDB {
		return nil
	}
	return fs.db.Close()
}

// lookup reports whether key exists; bbolt cannot tell an empty value from a
// missing key through Get alone.
func lookup(b *bbolt.Bucket, key []byte) ([]byte, bool) {
	k, v := b.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false
	}
	return v, true
}

// Open implements vfsio.FileSystem.
func (fs *FS) Open(_ context.Context, name string) (vfsio.Stream, error) {
	key := []byte(name)

	var data []byte
	err := fs.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(fs.bucket)
		v, ok := lookup(b, key)
		if !ok {
			return b.Put(key, []byte{})
		}
		// Values are only valid for the life of the transaction.
		data = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, vfsio.WrapError("open", name, err)
	}

	return bufstream.NewCursor(bufstream.New(data), bufstream.WithCommit(func(data []byte) error {
		return fs.commit(name, data)
	})), nil
}

func (fs *FS) commit(name string, data []byte) error {
	key := []byte(name)
	err := fs.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(fs.bucket)
		if _, ok := lookup(b, key); !ok {
			return nil
		}
		return b.Put(key, data)
	})
	return vfsio.WrapError("commit", name, err)
}

// Delete implements vfsio.FileSystem.
func (fs *FS) Delete(_ context.Context, name string) error {
	err := fs.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(fs.bucket).Delete([]byte(name))
	})
	return vfsio.WrapError("delete", name, err)
}

// Access implements vfsio.FileSystem.
func (fs *FS) Access(ctx context.Context, name string, mode vfsio.AccessMode) int {
	size, err := fs.Stat(ctx, name)
	return vfsio.AccessStat(size, err, mode)
}

// Stat implements vfsio.Stater.
func (fs *FS) Stat(_ context.Context, name string) (int64, error) {
	var (
		size  int64
		found bool
	)
	err := fs.db.View(func(tx *bbolt.Tx) error {
		v, ok := lookup(tx.Bucket(fs.bucket), []byte(name))
		size, found = int64(len(v)), ok
		return nil
	})
	if err != nil {
		return 0, vfsio.WrapError("stat", name, err)
	}
	if !found {
		return 0, vfsio.WrapError("stat", name, vfsio.ErrNotFound)
	}
	return size, nil
}

// List returns the names starting with prefix in key order.
func (fs *FS) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := fs.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(fs.bucket).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, vfsio.WrapError("list", prefix, err)
	}
	return names, nil
}

package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/compress"
	"github.com/hupe1980/vfsio/internal/remote"
	"github.com/minio/minio-go/v7"
)

var (
	_ vfsio.FileSystem = (*Store)(nil)
	_ vfsio.Stater     = (*Store)(nil)
)

// Store implements vfsio.FileSystem on a MinIO bucket.
type Store struct {
	*remote.FS
}

type options struct {
	compression compress.Type
}

// Option configures a Store.
type Option func(*options)

// WithCompression compresses objects at rest.
func WithCompression(t compress.Type) Option {
	return func(o *options) {
		o.compression = t
	}
}

// NewStore creates a MinIO-backed file system.
// rootPrefix is prepended to all keys (e.g. "databases/").
func NewStore(client *minio.Client, bucket, rootPrefix string, optFns ...Option) *Store {
	o := options{}
	for _, fn := range optFns {
		fn(&o)
	}
	return &Store{
		FS: remote.New(&objectClient{client: client, bucket: bucket}, rootPrefix, o.compression),
	}
}

// objectClient adapts minio.Client to remote.Client.
type objectClient struct {
	client *minio.Client
	bucket string
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func mapError(err error) error {
	if err != nil && isNotFound(err) {
		return vfsio.ErrNotFound
	}
	return err
}

func (c *objectClient) Size(ctx context.Context, key string) (int64, error) {
	info, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, mapError(err)
	}
	return info.Size, nil
}

func (c *objectClient) GetRange(ctx context.Context, key string, off, length int64) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, off+length-1); err != nil {
		return nil, err
	}
	obj, err := c.client.GetObject(ctx, c.bucket, key, opts)
	if err != nil {
		return nil, mapError(err)
	}
	return obj, nil
}

func (c *objectClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err)
	}
	return obj, nil
}

func (c *objectClient) Put(ctx context.Context, key string, data []byte) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

func (c *objectClient) Delete(ctx context.Context, key string) error {
	return mapError(c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}))
}

func (c *objectClient) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

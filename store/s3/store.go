package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/compress"
	"github.com/hupe1980/vfsio/internal/remote"
)

var (
	_ vfsio.FileSystem = (*Store)(nil)
	_ vfsio.Stater     = (*Store)(nil)
)

// Store implements vfsio.FileSystem on an S3 bucket.
type Store struct {
	*remote.FS
}

type options struct {
	compression compress.Type
	upload      UploadConfig
	region      string
}

// Option configures a Store.
type Option func(*options)

// WithCompression compresses objects at rest.
func WithCompression(t compress.Type) Option {
	return func(o *options) {
		o.compression = t
	}
}

// WithUploadConfig overrides DefaultUploadConfig.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *options) {
		o.upload = cfg
	}
}

// WithRegion sets the region used by NewFromConfig.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

func applyOptions(optFns []Option) options {
	o := options{upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// NewStore creates an S3-backed file system.
// rootPrefix is prepended to all keys (e.g. "my-db/").
func NewStore(client Client, bucket, rootPrefix string, optFns ...Option) *Store {
	o := applyOptions(optFns)
	oc := &objectClient{
		client:   client,
		uploader: newUploader(client, o.upload),
		bucket:   bucket,
		checksum: o.upload.EnableChecksum,
		partSize: o.upload.PartSize,
	}
	if oc.partSize <= 0 {
		oc.partSize = manager.DefaultUploadPartSize
	}
	return &Store{FS: remote.New(oc, rootPrefix, o.compression)}
}

// NewFromConfig loads the default AWS configuration (environment, shared
// config files, instance roles) and creates a Store.
func NewFromConfig(ctx context.Context, bucket, rootPrefix string, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)

	var cfgOpts []func(*config.LoadOptions) error
	if o.region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, rootPrefix, optFns...), nil
}

// objectClient adapts Client to remote.Client.
type objectClient struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	checksum bool
	partSize int64
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	// HeadObject reports a bare 404 without a modeled error.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}

func mapError(err error) error {
	if err != nil && isNotFound(err) {
		return vfsio.ErrNotFound
	}
	return err
}

func (c *objectClient) Size(ctx context.Context, key string) (int64, error) {
	head, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, mapError(err)
	}
	return aws.ToInt64(head.ContentLength), nil
}

func (c *objectClient) GetRange(ctx context.Context, key string, off, length int64) (io.ReadCloser, error) {
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, off+length-1)),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Body, nil
}

func (c *objectClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Body, nil
}

func (c *objectClient) Put(ctx context.Context, key string, data []byte) error {
	if c.checksum && int64(len(data)) < c.partSize {
		return putWithChecksum(ctx, c.client, c.bucket, key, data)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if c.checksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	_, err := c.uploader.Upload(ctx, input)
	return err
}

func (c *objectClient) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return mapError(err)
}

func (c *objectClient) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/compress"
	"github.com/hupe1980/vfsio/vfstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	_ Client = (*MockS3Client)(nil)
	_ Client = (*fakeS3)(nil)
)

func TestStore_Conformance(t *testing.T) {
	for _, typ := range []compress.Type{compress.None, compress.ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			vfstest.Run(t, func(t *testing.T) vfsio.FileSystem {
				return NewStore(newFakeS3(), "test-bucket", "prefix", WithCompression(typ))
			})
		})
	}
}

func TestStore_OpenMissingCreatesObject(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "prefix")

	mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "prefix/new.db"
	})).Return(nil, &types.NotFound{}).Once()
	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Key == "prefix/new.db" && aws.ToString(input.ChecksumCRC32C) == "AAAAAA=="
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	s, err := store.Open(context.Background(), "new.db")
	require.NoError(t, err)

	size, err := s.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	require.NoError(t, s.Close())
	mockClient.AssertExpectations(t)
}

func TestStore_PutChecksum(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "")

	mockClient.On("HeadObject", mock.Anything, mock.Anything).
		Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(0)}, nil).Once()
	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return aws.ToString(input.ChecksumCRC32C) == computeCRC32C([]byte("123456789")) &&
			aws.ToInt64(input.ContentLength) == 9
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	s, err := store.Open(context.Background(), "data")
	require.NoError(t, err)
	_, err = s.Write([]byte("123456789"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	mockClient.AssertExpectations(t)
}

func TestStore_PutWithoutChecksumUsesUploader(t *testing.T) {
	cfg := DefaultUploadConfig()
	cfg.EnableChecksum = false

	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "", WithUploadConfig(cfg))

	mockClient.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()
	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return input.ChecksumCRC32C == nil && input.ChecksumAlgorithm == ""
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	s, err := store.Open(context.Background(), "plain")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	mockClient.AssertExpectations(t)
}

func TestComputeCRC32C(t *testing.T) {
	// 0xE3069283 big-endian, base64.
	assert.Equal(t, "4waSgw==", computeCRC32C([]byte("123456789")))
}

func TestStore_RangedRead(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "prefix")

	mockClient.On("HeadObject", mock.Anything, mock.Anything).
		Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(10)}, nil).Once()
	mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Key == "prefix/main.db" && aws.ToString(input.Range) == "bytes=6-9"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("6789"))}, nil).Once()

	s, err := store.Open(context.Background(), "main.db")
	require.NoError(t, err)
	defer s.Close()

	buf := make([]byte, 8)
	n, err := vfsio.PositionedRead(s, buf, 0, 8, 6)
	require.NoError(t, err)
	assert.Equal(t, "6789", string(buf[:n]))

	mockClient.AssertExpectations(t)
}

func TestStore_Access(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "")

	mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
		return *input.Key == "missing"
	})).Return(nil, &smithy.GenericAPIError{Code: "NotFound"})
	mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
		return *input.Key == "empty"
	})).Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(0)}, nil)
	mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
		return *input.Key == "denied"
	})).Return(nil, errors.New("access denied"))

	ctx := context.Background()
	assert.Equal(t, 0, store.Access(ctx, "missing", vfsio.AccessExists))
	assert.Equal(t, 1, store.Access(ctx, "empty", vfsio.AccessExists))
	assert.Equal(t, 0, store.Access(ctx, "empty", vfsio.AccessNonEmpty))
	assert.Equal(t, 0, store.Access(ctx, "denied", vfsio.AccessExists))

	_, err := store.Stat(ctx, "missing")
	assert.ErrorIs(t, err, vfsio.ErrNotFound)
	_, err = store.Stat(ctx, "denied")
	assert.NotErrorIs(t, err, vfsio.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "prefix")

	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "prefix/del"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()
	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Key == "prefix/gone"
	})).Return(nil, &types.NoSuchKey{}).Once()

	assert.NoError(t, store.Delete(context.Background(), "del"))
	assert.NoError(t, store.Delete(context.Background(), "gone"))
	mockClient.AssertExpectations(t)
}

func TestStore_List_Pagination(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "test-bucket", "prefix")

	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken == nil && *input.Prefix == "prefix/main"
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("prefix/main.db-wal")}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page2"),
	}, nil).Once()
	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return aws.ToString(input.ContinuationToken) == "page2"
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("prefix/main.db")}},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	names, err := store.List(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"main.db", "main.db-wal"}, names)
	mockClient.AssertExpectations(t)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))
}

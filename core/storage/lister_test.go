package storage_test

import (
	"context"
	"errors"
	"testing"

	"partition-manager/core/storage"
	"partition-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// objectStream builds a closed listing channel from the given entries.
func objectStream(objs ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objs))
	for _, o := range objs {
		ch <- o
	}
	close(ch)
	return ch
}

func TestListCommonPrefixes(t *testing.T) {
	t.Run("ReturnsOnlyDirectories", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "data-bucket", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "table/" && !opts.Recursive
		})).Return(objectStream(
			minio.ObjectInfo{Key: "table/2019/"},
			minio.ObjectInfo{Key: "table/2018/"},
			minio.ObjectInfo{Key: "table/README.txt"},
		))

		lister := storage.NewLister(client)
		prefixes, err := lister.ListCommonPrefixes(context.Background(), "s3://data-bucket/table/")
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"s3://data-bucket/table/2018/",
			"s3://data-bucket/table/2019/",
		}, prefixes)
	})

	t.Run("AppendsSlashToPrefix", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "data-bucket", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "table/"
		})).Return(objectStream())

		lister := storage.NewLister(client)
		prefixes, err := lister.ListCommonPrefixes(context.Background(), "s3://data-bucket/table")
		assert.NoError(t, err)
		assert.Empty(t, prefixes)
	})

	t.Run("EmptyPrefix", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "data-bucket", mock.Anything).Return(objectStream())

		lister := storage.NewLister(client)
		prefixes, err := lister.ListCommonPrefixes(context.Background(), "s3://data-bucket/missing/")
		assert.NoError(t, err)
		assert.Empty(t, prefixes)
	})

	t.Run("ListingError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "data-bucket", mock.Anything).Return(objectStream(
			minio.ObjectInfo{Err: errors.New("access denied")},
		))

		lister := storage.NewLister(client)
		_, err := lister.ListCommonPrefixes(context.Background(), "s3://data-bucket/table/")
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("RejectsNonS3URI", func(t *testing.T) {
		lister := storage.NewLister(new(mocks.Client))
		_, err := lister.ListCommonPrefixes(context.Background(), "gs://bucket/table/")
		assert.Error(t, err)
	})
}

func TestHasAnyObject(t *testing.T) {
	t.Run("ObjectPresent", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "data-bucket", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "table/2019/01/02/03/" && opts.Recursive && opts.MaxKeys == 1
		})).Return(objectStream(
			minio.ObjectInfo{Key: "table/2019/01/02/03/part-0000.parquet"},
		))

		lister := storage.NewLister(client)
		ok, err := lister.HasAnyObject(context.Background(), "s3://data-bucket/table/2019/01/02/03/")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NothingUnderPrefix", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "data-bucket", mock.Anything).Return(objectStream())

		lister := storage.NewLister(client)
		ok, err := lister.HasAnyObject(context.Background(), "s3://data-bucket/table/2019/01/02/03/")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ProbeError", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "data-bucket", mock.Anything).Return(objectStream(
			minio.ObjectInfo{Err: errors.New("slow down")},
		))

		lister := storage.NewLister(client)
		_, err := lister.HasAnyObject(context.Background(), "s3://data-bucket/table/")
		assert.ErrorContains(t, err, "slow down")
	})
}

func TestParseURI(t *testing.T) {
	t.Run("BucketAndKey", func(t *testing.T) {
		bucket, key, err := storage.ParseURI("s3://data-bucket/table/2019/")
		assert.NoError(t, err)
		assert.Equal(t, "data-bucket", bucket)
		assert.Equal(t, "table/2019/", key)
	})

	t.Run("BucketOnly", func(t *testing.T) {
		bucket, key, err := storage.ParseURI("s3://data-bucket")
		assert.NoError(t, err)
		assert.Equal(t, "data-bucket", bucket)
		assert.Equal(t, "", key)
	})

	t.Run("BucketWithTrailingSlash", func(t *testing.T) {
		bucket, key, err := storage.ParseURI("s3://data-bucket/")
		assert.NoError(t, err)
		assert.Equal(t, "data-bucket", bucket)
		assert.Equal(t, "", key)
	})

	t.Run("WrongScheme", func(t *testing.T) {
		_, _, err := storage.ParseURI("http://data-bucket/table/")
		assert.Error(t, err)
	})

	t.Run("NoBucket", func(t *testing.T) {
		_, _, err := storage.ParseURI("s3:///table/")
		assert.Error(t, err)
	})
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "s3://b/table/", storage.NormalizeLocation("s3://b/table"))
	assert.Equal(t, "s3://b/table/", storage.NormalizeLocation("s3://b/table/"))
	assert.Equal(t, "", storage.NormalizeLocation(""))
}

func TestSplitKeySegments(t *testing.T) {
	assert.Equal(t, []string{"table", "2019", "01"}, storage.SplitKeySegments("table/2019/01/"))
	assert.Equal(t, []string{"table"}, storage.SplitKeySegments("/table/"))
	assert.Empty(t, storage.SplitKeySegments(""))
}

package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Lister exposes the directory-like view of a flat object store that the
// partition walker needs: one level of common prefixes at a time, plus an
// existence probe for catalog-declared locations.
type Lister struct {
	client Client
}

// NewLister creates a Lister on top of a storage client.
func NewLister(client Client) *Lister {
	return &Lister{client: client}
}

// ListCommonPrefixes returns the immediate child "directories" under uri as
// full s3:// URIs, sorted lexicographically. Objects directly under the
// prefix are ignored. A prefix with nothing beneath it yields an empty slice;
// a missing bucket is an error.
func (l *Lister) ListCommonPrefixes(ctx context.Context, uri string) ([]string, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if key != "" {
		key = NormalizeLocation(key)
	}

	// Cancel the listing goroutine if we bail out early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prefixes := make([]string, 0)
	for obj := range l.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    key,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", uri, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") && obj.Key != key {
			prefixes = append(prefixes, JoinURI(bucket, obj.Key))
		}
	}

	sort.Strings(prefixes)
	return prefixes, nil
}

// HasAnyObject reports whether at least one object exists under uri.
func (l *Lister) HasAnyObject(ctx context.Context, uri string) (bool, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return false, err
	}
	if key != "" {
		key = NormalizeLocation(key)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range l.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    key,
		Recursive: true,
		MaxKeys:   1,
	}) {
		if obj.Err != nil {
			return false, fmt.Errorf("failed to probe %s: %w", uri, obj.Err)
		}
		return true, nil
	}
	return false, nil
}

// Package storage provides the read-only object storage layer for partition
// discovery.
//
// It wraps the MinIO Go client, which speaks the S3 API against both AWS S3
// and self-hosted deployments. The reconciler treats storage as the ground
// truth and never mutates it; only listing operations are exposed.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easier to mock storage interactions for unit testing (see
// core/storage/mocks).
//
// # Lister
//
// Lister converts the flat key space into the directory-like traversal the
// partition walker needs:
//
//   - ListCommonPrefixes: one level of "subdirectories" under a prefix.
//   - HasAnyObject: whether any object exists under a prefix.
//
// Both operate on s3://bucket/key URIs; ParseURI, JoinURI and
// NormalizeLocation handle the conversions.
package storage

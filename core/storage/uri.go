package storage

import (
	"fmt"
	"strings"
)

// Scheme is the only storage scheme the reconciler understands.
const Scheme = "s3://"

// ParseURI splits an s3:// URI into bucket and key.
// The key keeps its trailing slash when present; an empty key addresses the
// bucket root.
func ParseURI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, Scheme) {
		return "", "", fmt.Errorf("unsupported storage uri %q: expected %s prefix", uri, Scheme)
	}
	bucket, key, _ = strings.Cut(uri[len(Scheme):], "/")
	if bucket == "" {
		return "", "", fmt.Errorf("storage uri %q has no bucket", uri)
	}
	return bucket, key, nil
}

// JoinURI builds an s3:// URI from bucket and key.
func JoinURI(bucket, key string) string {
	return Scheme + bucket + "/" + key
}

// NormalizeLocation appends a trailing slash when missing so locations from
// different sources compare equal. Catalog entries are frequently registered
// without one while listings always produce one.
func NormalizeLocation(uri string) string {
	if uri == "" || strings.HasSuffix(uri, "/") {
		return uri
	}
	return uri + "/"
}

// SplitKeySegments breaks an object key into its non-empty path segments.
func SplitKeySegments(key string) []string {
	parts := strings.Split(key, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

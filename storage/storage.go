package storage

import (
	"context"
	"io"
	"strings"
)

// Source opens the ingestion source file wherever it lives.
type Source interface {
	// Open returns the content of the file at path for reading.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// ForPath selects a source implementation by path scheme: "s3://bucket/key"
// is fetched from S3, anything else is read from the local filesystem.
func ForPath(ctx context.Context, path string) (Source, error) {
	if strings.HasPrefix(path, "s3://") {
		return NewS3Source(ctx)
	}
	return NewLocalSource(), nil
}

// splitS3Path splits "s3://bucket/key/parts" into bucket and key.
func splitS3Path(path string) (bucket, key string) {
	trimmed := strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		key = parts[1]
	}
	return bucket, key
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
)

// LocalSource reads the source file from the local filesystem
type LocalSource struct{}

// NewLocalSource creates a new local source instance
func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

// Open opens a local file for reading
func (s *LocalSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

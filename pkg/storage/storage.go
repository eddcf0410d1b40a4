package storage

import (
	"context"
	"io"
)

// Storage keeps uploaded originals. Download returns (nil, nil) when the path is unknown.
type Storage interface {
	Upload(ctx context.Context, r io.Reader, fileName, contentType string) (string, error)
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

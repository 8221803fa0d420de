package storage

import (
	"context"
	"time"
)

// NoopStorage devolve ErrNotConfigured em todas as operações.
type NoopStorage struct{}

func (NoopStorage) PresignUpload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrNotConfigured
}

func (NoopStorage) SignatureURL(host, key string) (string, error) {
	return "", ErrNotConfigured
}

func (NoopStorage) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	return nil, ErrNotConfigured
}

func (NoopStorage) Bucket() string { return "" }

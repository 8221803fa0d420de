package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConfigured indica que não há backend de objetos configurado.
	ErrNotConfigured = errors.New("storage: backend não configurado")
	// ErrObjectNotFound é retornado quando o objeto não existe no bucket.
	ErrObjectNotFound = errors.New("storage: objeto não encontrado")
)

// ObjectInfo descreve metadados lidos via HEAD.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Client reúne as operações que o serviço de assets precisa do bucket.
type Client interface {
	PresignUpload(ctx context.Context, key string, ttl time.Duration) (string, error)
	SignatureURL(host, key string) (string, error)
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	Bucket() string
}

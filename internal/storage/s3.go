package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// S3Config descreve parâmetros necessários para assinar requisições compatíveis com S3.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	SignatureTTL time.Duration
	HTTPClient   *http.Client
}

// S3Client gera URLs pré-assinadas (SigV4) e consulta metadados de objetos em S3/R2.
type S3Client struct {
	cfg    S3Config
	client *http.Client
	now    func() time.Time
}

// NewS3Client valida a configuração e prepara o cliente.
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.SignatureTTL <= 0 {
		cfg.SignatureTTL = 2 * time.Hour
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &S3Client{cfg: cfg, client: client, now: time.Now}, nil
}

// Bucket devolve o bucket configurado.
func (c *S3Client) Bucket() string {
	return c.cfg.Bucket
}

// PresignUpload devolve URL PUT path-style válida por ttl.
func (c *S3Client) PresignUpload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	target, err := c.objectURL(key)
	if err != nil {
		return "", err
	}
	return presignURL(http.MethodPut, target, c.cfg, ttl, c.now())
}

// SignatureURL assina leitura (GET) de key servida por host, normalmente o domínio público do bucket.
func (c *S3Client) SignatureURL(host, key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("storage: chave do objeto obrigatória")
	}

	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(host), "/"))
	if err != nil {
		return "", fmt.Errorf("storage: host inválido: %w", err)
	}

	target := *base
	target.Path = strings.TrimRight(base.Path, "/") + "/" + key
	target.RawPath = ""
	target.RawQuery = ""

	return presignURL(http.MethodGet, &target, c.cfg, c.cfg.SignatureTTL, c.now())
}

// Stat executa HEAD assinado no objeto.
func (c *S3Client) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	target, err := c.objectURL(key)
	if err != nil {
		return nil, err
	}

	rawURL := fmt.Sprintf("%s://%s%s", target.Scheme, target.Host, canonicalURI(target.Path))
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, err
	}
	signS3Request(req, c.cfg, emptyPayloadHash, c.now())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: head %s: %w", key, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrObjectNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("storage: head %s falhou (%d)", key, resp.StatusCode)
	}

	info := &ObjectInfo{
		Key:         strings.TrimLeft(key, "/"),
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        strings.Trim(resp.Header.Get("ETag"), "\""),
	}
	if raw := resp.Header.Get("Content-Length"); raw != "" {
		if size, err := strconv.ParseInt(raw, 10, 64); err == nil {
			info.Size = size
		}
	}
	if info.Size < 0 {
		info.Size = 0
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			info.LastModified = t
		}
	}

	return info, nil
}

func (c *S3Client) objectURL(key string) (*url.URL, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return nil, errors.New("storage: chave do objeto obrigatória")
	}

	endpoint, err := url.Parse(strings.TrimRight(c.cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("storage: endpoint inválido: %w", err)
	}

	target := *endpoint
	target.Path = strings.TrimRight(endpoint.Path, "/") + "/" + c.cfg.Bucket + "/" + key
	target.RawPath = ""
	return &target, nil
}

func (cfg S3Config) validate() error {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return errors.New("storage: endpoint do S3 ausente")
	}
	if strings.TrimSpace(cfg.Region) == "" {
		return errors.New("storage: região do S3 ausente")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return errors.New("storage: bucket do S3 ausente")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" {
		return errors.New("storage: access key ausente")
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return errors.New("storage: secret key ausente")
	}
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return errors.New("storage: endpoint deve incluir protocolo http/https")
	}
	return nil
}

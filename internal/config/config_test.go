package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "postgres://localhost/assets")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.JWTAccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access ttl %s", cfg.JWTAccessTTL)
	}
	if cfg.Storage.Provider != "noop" {
		t.Fatalf("expected noop storage, got %q", cfg.Storage.Provider)
	}
	if cfg.Storage.UploadURLTTL != 15*time.Minute {
		t.Fatalf("unexpected upload ttl %s", cfg.Storage.UploadURLTTL)
	}
	if cfg.RateLimitUser != (RateLimitConfig{RequestsPerSecond: 5, Burst: 10}) {
		t.Fatalf("unexpected user rate limit %+v", cfg.RateLimitUser)
	}
	if cfg.Signature.Enabled {
		t.Fatal("signature should be disabled by default")
	}
	if cfg.Signature.TTL != 2*time.Hour {
		t.Fatalf("unexpected signature ttl %s", cfg.Signature.TTL)
	}
}

func TestLoadSignatureUsesPublicURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_PROVIDER", "R2")
	t.Setenv("S3_PUBLIC_URL", "https://assets.example.com")
	t.Setenv("SIGNATURE_ENABLED", "true")
	t.Setenv("ALLOW_ORIGINS", " https://a.example.com, ,*.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Provider != "r2" || !cfg.Storage.UsesS3() {
		t.Fatalf("unexpected provider %q", cfg.Storage.Provider)
	}
	if !cfg.Signature.Enabled || cfg.Signature.Host != "https://assets.example.com" {
		t.Fatalf("unexpected signature config %+v", cfg.Signature)
	}
	if len(cfg.AllowOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.AllowOrigins)
	}
}

func TestLoadSignedTTLBounds(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPLOAD_URL_TTL", "1s")
	t.Setenv("SIGNATURE_TTL", "168h")
	t.Setenv("RATE_LIMIT_USER_RPS", "2.5")
	t.Setenv("RATE_LIMIT_USER_BURST", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.UploadURLTTL != MinSignedURLTTL || cfg.Signature.TTL != MaxSignedURLTTL {
		t.Fatalf("unexpected ttls %s %s", cfg.Storage.UploadURLTTL, cfg.Signature.TTL)
	}
	if cfg.RateLimitUser != (RateLimitConfig{RequestsPerSecond: 2.5, Burst: 3}) {
		t.Fatalf("unexpected user rate limit %+v", cfg.RateLimitUser)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"short secret", map[string]string{"JWT_SECRET": "curto"}},
		{"bad provider", map[string]string{"STORAGE_PROVIDER": "ftp"}},
		{"bad access ttl", map[string]string{"JWT_ACCESS_TTL": "-1m"}},
		{"bad ttl", map[string]string{"UPLOAD_URL_TTL": "abc"}},
		{"sub-second upload ttl", map[string]string{"UPLOAD_URL_TTL": "500ms"}},
		{"upload ttl above a week", map[string]string{"UPLOAD_URL_TTL": "169h"}},
		{"signature ttl above a week", map[string]string{"SIGNATURE_TTL": "200h"}},
		{"sub-second signature ttl", map[string]string{"SIGNATURE_TTL": "900ms"}},
		{"bad user rps", map[string]string{"RATE_LIMIT_USER_RPS": "rápido"}},
		{"zero user burst", map[string]string{"RATE_LIMIT_USER_BURST": "0"}},
		{"signature without s3", map[string]string{"SIGNATURE_ENABLED": "true"}},
		{"signature without host", map[string]string{"SIGNATURE_ENABLED": "1", "STORAGE_PROVIDER": "s3"}},
		{"bad bool", map[string]string{"SIGNATURE_ENABLED": "talvez"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	JWTSecret       string
	JWTAccessTTL    time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitUser   RateLimitConfig
	InternalKeyHash string
	Storage         StorageConfig
	Signature       SignatureConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Limites aceitos pelo SigV4 para X-Amz-Expires.
const (
	MinSignedURLTTL = time.Second
	MaxSignedURLTTL = 7 * 24 * time.Hour
)

// StorageConfig descreve o backend de objetos usado para URLs pré-assinadas.
type StorageConfig struct {
	Provider     string
	S3Endpoint   string
	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3PublicURL  string
	UploadURLTTL time.Duration
}

// SignatureConfig controla a assinatura de URLs de leitura.
type SignatureConfig struct {
	Enabled bool
	Host    string
	TTL     time.Duration
}

// UsesS3 indica se o provedor configurado fala o protocolo S3.
func (s StorageConfig) UsesS3() bool {
	switch s.Provider {
	case "s3", "r2", "cloudflare-r2":
		return true
	}
	return false
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 20, Burst: 40}

	userLimit, err := loadRateLimit("RATE_LIMIT_USER", RateLimitConfig{RequestsPerSecond: 5, Burst: 10})
	if err != nil {
		return nil, err
	}
	cfg.RateLimitUser = userLimit

	cfg.InternalKeyHash = strings.TrimSpace(getEnv("INTERNAL_API_KEY_HASH", ""))

	if err := loadStorage(cfg); err != nil {
		return nil, err
	}
	if err := loadSignature(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadStorage(cfg *Config) error {
	st := StorageConfig{
		Provider:    strings.ToLower(strings.TrimSpace(getEnv("STORAGE_PROVIDER", "noop"))),
		S3Endpoint:  strings.TrimSpace(getEnv("S3_ENDPOINT", "")),
		S3Region:    strings.TrimSpace(getEnv("S3_REGION", "auto")),
		S3Bucket:    strings.TrimSpace(getEnv("S3_BUCKET", "")),
		S3AccessKey: strings.TrimSpace(getEnv("S3_ACCESS_KEY", "")),
		S3SecretKey: strings.TrimSpace(getEnv("S3_SECRET_KEY", "")),
		S3PublicURL: strings.TrimSpace(getEnv("S3_PUBLIC_URL", "")),
	}

	switch st.Provider {
	case "", "noop":
		st.Provider = "noop"
	case "s3", "r2", "cloudflare-r2":
	default:
		return fmt.Errorf("STORAGE_PROVIDER %s não suportado", st.Provider)
	}

	ttl, err := parseSignedTTLEnv("UPLOAD_URL_TTL", 15*time.Minute)
	if err != nil {
		return err
	}
	st.UploadURLTTL = ttl

	cfg.Storage = st
	return nil
}

func loadSignature(cfg *Config) error {
	enabled, err := parseBoolEnv("SIGNATURE_ENABLED", false)
	if err != nil {
		return err
	}

	ttl, err := parseSignedTTLEnv("SIGNATURE_TTL", 2*time.Hour)
	if err != nil {
		return err
	}

	host := strings.TrimSpace(getEnv("SIGNATURE_HOST", ""))
	if host == "" {
		host = cfg.Storage.S3PublicURL
	}

	if enabled {
		if !cfg.Storage.UsesS3() {
			return errors.New("SIGNATURE_ENABLED exige STORAGE_PROVIDER s3/r2")
		}
		if host == "" {
			return errors.New("SIGNATURE_HOST ou S3_PUBLIC_URL obrigatório com assinatura habilitada")
		}
	}

	cfg.Signature = SignatureConfig{Enabled: enabled, Host: host, TTL: ttl}
	return nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

// parseSignedTTLEnv lê a validade de uma URL assinada.
func parseSignedTTLEnv(key string, def time.Duration) (time.Duration, error) {
	ttl, err := parseDurationEnv(key, def)
	if err != nil {
		return 0, err
	}
	if ttl < MinSignedURLTTL || ttl > MaxSignedURLTTL {
		return 0, fmt.Errorf("%s deve estar entre %s e %s", key, MinSignedURLTTL, MaxSignedURLTTL)
	}
	return ttl, nil
}

// loadRateLimit lê <prefix>_RPS e <prefix>_BURST.
func loadRateLimit(prefix string, def RateLimitConfig) (RateLimitConfig, error) {
	out := def

	if raw := strings.TrimSpace(getEnv(prefix+"_RPS", "")); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps <= 0 {
			return RateLimitConfig{}, errors.New(prefix + "_RPS inválido")
		}
		out.RequestsPerSecond = rps
	}

	if raw := strings.TrimSpace(getEnv(prefix+"_BURST", "")); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil || burst <= 0 {
			return RateLimitConfig{}, errors.New(prefix + "_BURST inválido")
		}
		out.Burst = burst
	}

	return out, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.New(key + " inválido")
	}
	return b, nil
}

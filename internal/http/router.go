package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/assets/internal/asset"
	"github.com/gestaozabele/assets/internal/auth"
	"github.com/gestaozabele/assets/internal/config"
	httpmiddleware "github.com/gestaozabele/assets/internal/http/middleware"
	"github.com/gestaozabele/assets/internal/storage"
)

// pingFunc verifica uma dependência externa.
type pingFunc func(ctx context.Context) error

type Handler struct {
	cfg           *config.Config
	jwt           *auth.JWTManager
	uploads       uploadIssuer
	results       resultLoader
	signatures    signatureIssuer
	dbPing        pingFunc
	redisPing     pingFunc
	publicLimiter *httpmiddleware.RateLimiter
	userLimiter   *httpmiddleware.RateLimiter
}

// NewRouter monta serviços de asset sobre Postgres, Redis e o bucket configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, jwtManager *auth.JWTManager) (http.Handler, error) {
	h, err := newHandler(cfg, pool, redisClient, jwtManager)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("storage", cfg.Storage.Provider).
		Bool("signature", h.signatures.Enabled()).
		Bool("internal_key", cfg.InternalKeyHash != "").
		Msg("rotas de asset configuradas")

	return h.routes(), nil
}

func newHandler(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, jwtManager *auth.JWTManager) (*Handler, error) {
	client, err := NewStorageClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	repo := asset.NewRepository(pool)
	reservations := asset.NewRedisReservations(redisClient)

	var inspector asset.ObjectInspector
	if cfg.Storage.UsesS3() {
		inspector = client
	}

	var signer asset.URLSigner
	if cfg.Signature.Enabled {
		signer = client
	}

	h := &Handler{
		cfg:        cfg,
		jwt:        jwtManager,
		uploads:    asset.NewTokenService(repo, client, reservations, cfg.Storage.UploadURLTTL),
		results:    asset.NewCallbackService(repo, inspector, reservations, log.With().Str("component", "asset_callback").Logger()),
		signatures: asset.NewSignatureService(cfg.Signature.Host, signer),
		dbPing:     pool.Ping,
		redisPing: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		userLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitUser.RequestsPerSecond, cfg.RateLimitUser.Burst),
	}
	return h, nil
}

// NewStorageClient escolhe o backend conforme STORAGE_PROVIDER.
func NewStorageClient(cfg *config.Config) (storage.Client, error) {
	if !cfg.Storage.UsesS3() {
		return storage.NoopStorage{}, nil
	}
	return storage.NewS3Client(storage.S3Config{
		Endpoint:     cfg.Storage.S3Endpoint,
		Region:       cfg.Storage.S3Region,
		Bucket:       cfg.Storage.S3Bucket,
		AccessKey:    cfg.Storage.S3AccessKey,
		SecretKey:    cfg.Storage.S3SecretKey,
		SignatureTTL: cfg.Signature.TTL,
	})
}

func (h *Handler) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(h.cfg.AllowOrigins))
	r.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/internal/asset", func(internal chi.Router) {
		internal.Use(httpmiddleware.InternalKey(h.cfg.InternalKeyHash))
		mountRoutes(internal, h.assetRoutes(), h.jwt, h.userLimiter)
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.dbPing(ctx)
	redisErr := h.redisPing(ctx)

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

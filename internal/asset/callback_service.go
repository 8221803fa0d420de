package asset

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/assets/internal/storage"
)

// ResultStore persiste e consulta resultados de upload.
type ResultStore interface {
	ListByTokens(ctx context.Context, assetType Type, tokens []string) ([]UploadResult, error)
	InsertAsset(ctx context.Context, a StoredAsset) error
}

// ObjectInspector lê metadados do objeto diretamente no bucket.
type ObjectInspector interface {
	Stat(ctx context.Context, key string) (*storage.ObjectInfo, error)
	Bucket() string
}

// CallbackService resolve resultados de upload, registrando uploads ainda não confirmados.
type CallbackService struct {
	results      ResultStore
	objects      ObjectInspector
	reservations ReservationStore
	logger       zerolog.Logger
}

// NewCallbackService cria o serviço. objects pode ser nil quando não há bucket configurado.
func NewCallbackService(results ResultStore, objects ObjectInspector, reservations ReservationStore, logger zerolog.Logger) *CallbackService {
	return &CallbackService{
		results:      results,
		objects:      objects,
		reservations: reservations,
		logger:       logger,
	}
}

// LoadAssetUploadResults devolve os resultados na ordem dos tokens; tokens sem objeto são omitidos.
func (s *CallbackService) LoadAssetUploadResults(ctx context.Context, assetType Type, tokens []string) ([]UploadResult, error) {
	unique := dedupeTokens(tokens)
	if len(unique) == 0 {
		return []UploadResult{}, nil
	}

	stored, err := s.results.ListByTokens(ctx, assetType, unique)
	if err != nil {
		return nil, fmt.Errorf("carregar resultados: %w", err)
	}

	byToken := make(map[string]UploadResult, len(stored))
	for _, r := range stored {
		byToken[r.Token] = r
	}

	results := make([]UploadResult, 0, len(unique))
	for _, token := range unique {
		if r, ok := byToken[token]; ok {
			results = append(results, r)
			continue
		}

		r, found, err := s.confirmUpload(ctx, assetType, token)
		if err != nil {
			return nil, err
		}
		if found {
			results = append(results, *r)
		}
	}

	return results, nil
}

// confirmUpload consulta o bucket e, se houver reserva, persiste o asset.
func (s *CallbackService) confirmUpload(ctx context.Context, assetType Type, token string) (*UploadResult, bool, error) {
	if s.objects == nil {
		return nil, false, nil
	}

	info, err := s.objects.Stat(ctx, token)
	switch {
	case errors.Is(err, storage.ErrObjectNotFound), errors.Is(err, storage.ErrNotConfigured):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("consultar objeto %s: %w", token, err)
	}

	mimeType := strings.TrimSpace(info.ContentType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	result := UploadResult{
		Token:    token,
		Name:     path.Base(token),
		MimeType: mimeType,
		Size:     info.Size,
		Bucket:   s.objects.Bucket(),
		Type:     assetType,
	}
	if strings.HasPrefix(mimeType, "image/") {
		result.Preview = token
	}

	reservation, err := s.reservations.Get(ctx, token)
	if errors.Is(err, ErrReservationNotFound) {
		s.logger.Warn().Str("token", token).Msg("objeto sem reserva de upload; resultado não persistido")
		return &result, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("carregar reserva %s: %w", token, err)
	}

	if err := s.results.InsertAsset(ctx, StoredAsset{
		UploadResult: result,
		SpaceID:      reservation.SpaceID,
		NodeID:       reservation.NodeID,
		UploadedBy:   reservation.UserID,
	}); err != nil {
		return nil, false, fmt.Errorf("registrar asset %s: %w", token, err)
	}

	if err := s.reservations.Delete(ctx, token); err != nil {
		s.logger.Warn().Err(err).Str("token", token).Msg("falha ao remover reserva")
	}

	s.logger.Info().Str("token", token).Str("space_id", reservation.SpaceID).Int64("size", result.Size).Msg("upload confirmado")
	return &result, true, nil
}

func dedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

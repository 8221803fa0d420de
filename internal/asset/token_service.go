package asset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/assets/internal/storage"
	"github.com/gestaozabele/assets/internal/util"
)

// NodeDirectory resolve o espaço de um nó e a participação de usuários.
type NodeDirectory interface {
	SpaceOfNode(ctx context.Context, nodeID string) (string, error)
	IsSpaceMember(ctx context.Context, spaceID string, userID uuid.UUID) (bool, error)
}

// UploadPresigner assina URLs de envio.
type UploadPresigner interface {
	PresignUpload(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ReservationStore guarda o vínculo token -> solicitante enquanto a URL for válida.
type ReservationStore interface {
	Save(ctx context.Context, r Reservation, ttl time.Duration) error
	Get(ctx context.Context, token string) (*Reservation, error)
	Delete(ctx context.Context, token string) error
}

// TokenService emite certificados de upload para nós de um espaço.
type TokenService struct {
	nodes        NodeDirectory
	presigner    UploadPresigner
	reservations ReservationStore
	ttl          time.Duration
	now          func() time.Time
}

// NewTokenService cria o serviço; ttl é a validade de cada URL emitida.
func NewTokenService(nodes NodeDirectory, presigner UploadPresigner, reservations ReservationStore, ttl time.Duration) *TokenService {
	return &TokenService{
		nodes:        nodes,
		presigner:    presigner,
		reservations: reservations,
		ttl:          ttl,
		now:          time.Now,
	}
}

// CreateSpaceAssetPreSignedURL emite count certificados, na ordem de criação.
func (s *TokenService) CreateSpaceAssetPreSignedURL(ctx context.Context, userID uuid.UUID, nodeID string, assetType Type, count int) ([]UploadCertificate, error) {
	nodeID = strings.TrimSpace(nodeID)
	if nodeID == "" {
		return nil, ErrInvalidNode
	}
	if count < 1 || count > MaxUploadCount {
		return nil, ErrInvalidCount
	}

	spaceID, err := s.nodes.SpaceOfNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	member, err := s.nodes.IsSpaceMember(ctx, spaceID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrForbidden
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	certificates := make([]UploadCertificate, 0, count)

	for i := 0; i < count; i++ {
		token := newResourceKey(assetType, now)

		uploadURL, err := s.presigner.PresignUpload(ctx, token, s.ttl)
		if err != nil {
			if errors.Is(err, storage.ErrNotConfigured) {
				return nil, ErrStorageDisabled
			}
			return nil, fmt.Errorf("presign %s: %w", token, err)
		}

		reservation := Reservation{
			Token:     token,
			UserID:    userID,
			NodeID:    nodeID,
			SpaceID:   spaceID,
			Type:      assetType,
			CreatedAt: now,
		}
		if err := s.reservations.Save(ctx, reservation, s.ttl); err != nil {
			return nil, fmt.Errorf("reserva %s: %w", token, err)
		}

		certificates = append(certificates, UploadCertificate{
			Token:               token,
			UploadURL:           uploadURL,
			UploadRequestMethod: http.MethodPut,
			ExpiresAt:           expiresAt,
		})
	}

	return certificates, nil
}

// newResourceKey monta chaves no formato space/2019/12/10/<hex>.
func newResourceKey(assetType Type, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s", assetType.keyPrefix(), now.Format("2006/01/02"), util.NewObjectID())
}

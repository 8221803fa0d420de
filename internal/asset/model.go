package asset

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type identifica a categoria do asset; os valores são persistidos.
type Type int16

const (
	TypeUserAvatar Type = 0
	TypeSpaceLogo  Type = 1
	TypeDatasheet  Type = 2
	TypeDocument   Type = 3
)

const (
	// DefaultUploadCount é usado quando count não é informado.
	DefaultUploadCount = 1
	// MaxUploadCount limita certificados emitidos por requisição.
	MaxUploadCount = 20
)

var (
	ErrInvalidNode         = errors.New("nodeId obrigatório")
	ErrInvalidCount        = errors.New("count deve estar entre 1 e 20")
	ErrNodeNotFound        = errors.New("nó não encontrado")
	ErrForbidden           = errors.New("acesso negado ao espaço do nó")
	ErrStorageDisabled     = errors.New("armazenamento indisponível")
	ErrSignatureDisabled   = errors.New("assinatura não habilitada")
	ErrReservationNotFound = errors.New("reserva de upload não encontrada")
)

func (t Type) String() string {
	switch t {
	case TypeUserAvatar:
		return "user_avatar"
	case TypeSpaceLogo:
		return "space_logo"
	case TypeDatasheet:
		return "datasheet"
	case TypeDocument:
		return "document"
	}
	return "unknown"
}

// keyPrefix define a raiz da chave de objeto por tipo.
func (t Type) keyPrefix() string {
	if t == TypeUserAvatar {
		return "avatar"
	}
	return "space"
}

// UploadCertificate descreve uma URL pré-assinada para envio direto ao bucket.
type UploadCertificate struct {
	Token               string    `json:"token"`
	UploadURL           string    `json:"uploadUrl"`
	UploadRequestMethod string    `json:"uploadRequestMethod"`
	ExpiresAt           time.Time `json:"expiresAt"`
}

// UploadResult são os metadados de um upload concluído.
type UploadResult struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Height   int    `json:"height"`
	Width    int    `json:"width"`
	Preview  string `json:"preview,omitempty"`
	Bucket   string `json:"bucket"`
	Type     Type   `json:"type"`
}

// StoredAsset é a linha persistida: resultado mais a origem do upload.
type StoredAsset struct {
	UploadResult
	SpaceID    string
	NodeID     string
	UploadedBy uuid.UUID
}

// URLSignature associa a chave do recurso à URL assinada.
type URLSignature struct {
	ResourceKey string `json:"resourceKey"`
	URL         string `json:"url"`
}

// Reservation liga um token emitido ao usuário e nó que o solicitaram.
type Reservation struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"userId"`
	NodeID    string    `json:"nodeId"`
	SpaceID   string    `json:"spaceId"`
	Type      Type      `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

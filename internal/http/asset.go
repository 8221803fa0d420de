package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/assets/internal/asset"
	httpmiddleware "github.com/gestaozabele/assets/internal/http/middleware"
	"github.com/gestaozabele/assets/internal/util"
)

type uploadIssuer interface {
	CreateSpaceAssetPreSignedURL(ctx context.Context, userID uuid.UUID, nodeID string, assetType asset.Type, count int) ([]asset.UploadCertificate, error)
}

type resultLoader interface {
	LoadAssetUploadResults(ctx context.Context, assetType asset.Type, tokens []string) ([]asset.UploadResult, error)
}

type signatureIssuer interface {
	Enabled() bool
	SignURLs(ctx context.Context, keys []string) ([]asset.URLSignature, error)
}

// GetUploadPreSignedURL emite URLs de upload para o nó informado.
func (h *Handler) GetUploadPreSignedURL(w http.ResponseWriter, r *http.Request) {
	userID, err := httpmiddleware.GetUserID(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	query := r.URL.Query()
	nodeID := strings.TrimSpace(query.Get("nodeId"))
	if err := util.RequireString(nodeID, "nodeId"); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	count := asset.DefaultUploadCount
	if raw := strings.TrimSpace(query.Get("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "count inválido", nil)
			return
		}
		count = n
	}

	certificates, err := h.uploads.CreateSpaceAssetPreSignedURL(r.Context(), userID, nodeID, asset.TypeDatasheet, count)
	if err != nil {
		h.handleAssetError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, certificates)
}

// GetAssetInfo devolve o resultado do upload do token, ou data nulo quando não existe.
func (h *Handler) GetAssetInfo(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if err := util.RequireString(token, "token"); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	results, err := h.results.LoadAssetUploadResults(r.Context(), asset.TypeDatasheet, []string{token})
	if err != nil {
		h.handleAssetError(w, r, err)
		return
	}

	if len(results) == 0 {
		WriteJSON(w, http.StatusOK, nil)
		return
	}
	WriteJSON(w, http.StatusOK, results[0])
}

// GetSignatureURLs assina em lote as chaves recebidas em resourceKeys.
func (h *Handler) GetSignatureURLs(w http.ResponseWriter, r *http.Request) {
	if !h.signatures.Enabled() {
		h.handleAssetError(w, r, asset.ErrSignatureDisabled)
		return
	}

	values, ok := r.URL.Query()["resourceKeys"]
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "resourceKeys obrigatório", nil)
		return
	}

	signatures, err := h.signatures.SignURLs(r.Context(), util.SplitList(values))
	if err != nil {
		h.handleAssetError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, signatures)
}

func (h *Handler) handleAssetError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, asset.ErrInvalidNode), errors.Is(err, asset.ErrInvalidCount):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, asset.ErrNodeNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, asset.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, asset.ErrStorageDisabled):
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", err.Error(), nil)
	case errors.Is(err, asset.ErrSignatureDisabled):
		WriteError(w, http.StatusUnprocessableEntity, "BUSINESS", err.Error(), nil)
	default:
		log.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("falha ao processar asset")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

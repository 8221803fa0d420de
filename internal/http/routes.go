package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/assets/internal/auth"
	httpmiddleware "github.com/gestaozabele/assets/internal/http/middleware"
)

// Route registra método, caminho e exigências de acesso de um endpoint.
type Route struct {
	Name               string
	Method             string
	Path               string
	Handler            http.HandlerFunc
	RequiredLogin      bool
	RequiredPermission bool
	// Permission é o papel exigido quando RequiredPermission é verdadeiro.
	Permission string
}

// assetRoutes são os endpoints montados sob /internal/asset.
func (h *Handler) assetRoutes() []Route {
	return []Route{
		{
			Name:          "Get Upload PreSigned URL",
			Method:        http.MethodGet,
			Path:          "/upload/preSignedUrl",
			Handler:       h.GetUploadPreSignedURL,
			RequiredLogin: true,
		},
		{
			Name:    "Get Asset Info",
			Method:  http.MethodGet,
			Path:    "/get",
			Handler: h.GetAssetInfo,
		},
		{
			Name:    "Batch get asset signature url",
			Method:  http.MethodGet,
			Path:    "/signatures",
			Handler: h.GetSignatureURLs,
		},
	}
}

// mountRoutes aplica autenticação, limite por usuário e papel conforme cada rota.
// Permissão implica login.
func mountRoutes(r chi.Router, routes []Route, jwtManager *auth.JWTManager, userLimiter *httpmiddleware.RateLimiter) {
	for _, route := range routes {
		var handler http.Handler = route.Handler
		if route.RequiredPermission {
			handler = httpmiddleware.RequireRoles(route.Permission)(handler)
		}
		if route.RequiredLogin || route.RequiredPermission {
			handler = httpmiddleware.UserRateLimit(userLimiter)(handler)
			handler = httpmiddleware.Auth(jwtManager)(handler)
		}
		r.Method(route.Method, route.Path, handler)
	}
}

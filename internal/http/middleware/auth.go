package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gestaozabele/assets/internal/auth"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyRoles   contextKey = "roles"
)

// AccessCookie é o cookie de sessão aceito quando não há header Authorization.
const AccessCookie = "access_token"

// ErrNoSession indica ausência de usuário autenticado no contexto.
var ErrNoSession = errors.New("sessão ausente")

// Auth valida o JWT de sessão e injeta subject e papéis no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			ctx := WithSession(r.Context(), claims.Subject, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	if cookie, err := r.Cookie(AccessCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

// WithSession injeta a identidade do chamador no contexto.
func WithSession(ctx context.Context, subject string, roles []string) context.Context {
	ctx = context.WithValue(ctx, ContextKeySubject, subject)
	return context.WithValue(ctx, ContextKeyRoles, roles)
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetRoles recupera roles do contexto.
func GetRoles(ctx context.Context) []string {
	val, _ := ctx.Value(ContextKeyRoles).([]string)
	return val
}

// GetUserID devolve o usuário autenticado.
func GetUserID(ctx context.Context) (uuid.UUID, error) {
	subject := GetSubject(ctx)
	if subject == "" {
		return uuid.Nil, ErrNoSession
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, ErrNoSession
	}
	return id, nil
}

// RequireRoles garante que o usuário possua pelo menos um dos papéis informados.
func RequireRoles(requiredRoles ...string) func(http.Handler) http.Handler {
	normalized := make([]string, 0, len(requiredRoles))
	for _, role := range requiredRoles {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role != "" {
			normalized = append(normalized, role)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, role := range GetRoles(r.Context()) {
				roleUpper := strings.ToUpper(strings.TrimSpace(role))
				for _, required := range normalized {
					if roleUpper == required {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "permissão insuficiente")
		})
	}
}

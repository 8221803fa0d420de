package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/assets/internal/auth"
)

// InternalKeyHeader carrega a chave compartilhada entre serviços internos.
const InternalKeyHeader = "X-Internal-Key"

// InternalKey exige X-Internal-Key compatível com o hash Argon2id configurado.
// Com hash vazio o middleware não faz nada.
func InternalKey(encodedHash string) func(http.Handler) http.Handler {
	encodedHash = strings.TrimSpace(encodedHash)
	if encodedHash == "" {
		return func(next http.Handler) http.Handler { return next }
	}

	// digest da última chave aceita
	var (
		mu       sync.RWMutex
		accepted []byte
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(InternalKeyHeader))
			if key == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "chave interna ausente")
				return
			}

			digest := sha256.Sum256([]byte(key))

			mu.RLock()
			cached := accepted != nil && subtle.ConstantTimeCompare(accepted, digest[:]) == 1
			mu.RUnlock()

			if !cached {
				ok, err := auth.VerifyKey(key, encodedHash)
				if err != nil {
					log.Error().Err(err).Msg("hash de chave interna inválido")
					writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
					return
				}
				if !ok {
					writeError(w, http.StatusUnauthorized, "AUTH", "chave interna inválida")
					return
				}
				mu.Lock()
				accepted = digest[:]
				mu.Unlock()
			}

			next.ServeHTTP(w, r)
		})
	}
}

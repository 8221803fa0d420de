package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
)

// MinKeyLength é o tamanho mínimo de uma chave interna.
const MinKeyLength = 24

// ErrWeakKey indica chave interna curta demais para ser aceita.
var ErrWeakKey = errors.New("chave interna deve ter pelo menos 24 caracteres")

var keyParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// GenerateKey cria uma chave interna aleatória (32 bytes, base64 url).
func GenerateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashKey gera o hash Argon2id da chave, sem espaços nas pontas.
func HashKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if len(key) < MinKeyLength {
		return "", ErrWeakKey
	}
	return argon2id.CreateHash(key, keyParams)
}

// VerifyKey compara a chave apresentada com o hash configurado.
// Chaves abaixo do tamanho mínimo nunca conferem.
func VerifyKey(key, encodedHash string) (bool, error) {
	key = strings.TrimSpace(key)
	if len(key) < MinKeyLength {
		return false, nil
	}
	return argon2id.ComparePasswordAndHash(key, encodedHash)
}

package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewObjectID gera 32 caracteres hex a partir de um UUID v4, usado como sufixo de chaves de objeto.
func NewObjectID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

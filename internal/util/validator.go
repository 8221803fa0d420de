package util

import (
	"errors"
	"strings"
)

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

// SplitList junta parâmetros repetidos e separados por vírgula, preservando a ordem.
// Itens vazios são descartados.
func SplitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

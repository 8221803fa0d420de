package asset

import (
	"context"
	"fmt"
)

// URLSigner assina a leitura de key servida por host.
type URLSigner interface {
	SignatureURL(host, key string) (string, error)
}

// SignatureService emite URLs de leitura assinadas. Sem signer, a capacidade está desligada.
type SignatureService struct {
	host   string
	signer URLSigner
}

// NewSignatureService cria o serviço; signer nil significa assinatura não habilitada.
func NewSignatureService(host string, signer URLSigner) *SignatureService {
	return &SignatureService{host: host, signer: signer}
}

// Enabled indica se há signer configurado.
func (s *SignatureService) Enabled() bool {
	return s != nil && s.signer != nil
}

// SignURLs assina cada chave na ordem recebida. Uma falha aborta o lote inteiro.
func (s *SignatureService) SignURLs(ctx context.Context, keys []string) ([]URLSignature, error) {
	if !s.Enabled() {
		return nil, ErrSignatureDisabled
	}

	out := make([]URLSignature, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		signed, err := s.signer.SignatureURL(s.host, key)
		if err != nil {
			return nil, fmt.Errorf("assinar %s: %w", key, err)
		}
		out = append(out, URLSignature{ResourceKey: key, URL: signed})
	}
	return out, nil
}

package auth

import (
	"errors"
	"testing"
)

func TestKeyHashVerify(t *testing.T) {
	hash, err := HashKey("  chave-interna-do-servico-fusion\n")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		key  string
		want bool
	}{
		{"chave-interna-do-servico-fusion", true},
		{" chave-interna-do-servico-fusion ", true},
		{"outra-chave-interna-qualquer", false},
		{"curta", false},
		{"", false},
	}
	for _, tc := range tests {
		ok, err := VerifyKey(tc.key, hash)
		if err != nil || ok != tc.want {
			t.Fatalf("%q: expected %v, got %v %v", tc.key, tc.want, ok, err)
		}
	}
}

func TestHashKeyRejectsWeakKey(t *testing.T) {
	for _, key := range []string{"", "curta", "   123456789012345678901   "} {
		if _, err := HashKey(key); !errors.Is(err, ErrWeakKey) {
			t.Fatalf("%q: expected ErrWeakKey, got %v", key, err)
		}
	}
}

func TestGenerateKey(t *testing.T) {
	first, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, _ := GenerateKey()
	if len(first) < MinKeyLength || first == second {
		t.Fatalf("unexpected keys %q %q", first, second)
	}
	if _, err := HashKey(first); err != nil {
		t.Fatalf("generated key must be accepted: %v", err)
	}
}

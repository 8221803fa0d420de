package asset

import (
	"context"
	"errors"
	"testing"
)

func TestSignURLsDisabled(t *testing.T) {
	svc := NewSignatureService("https://assets.example.com", nil)
	if svc.Enabled() {
		t.Fatal("service without signer must be disabled")
	}

	for _, keys := range [][]string{nil, {}, {"a"}} {
		if _, err := svc.SignURLs(context.Background(), keys); !errors.Is(err, ErrSignatureDisabled) {
			t.Fatalf("keys %v: expected ErrSignatureDisabled, got %v", keys, err)
		}
	}

	var nilSvc *SignatureService
	if nilSvc.Enabled() {
		t.Fatal("nil service must be disabled")
	}
}

func TestSignURLsOrder(t *testing.T) {
	svc := NewSignatureService("https://assets.example.com/", stubSigner{})

	got, err := svc.SignURLs(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := []URLSignature{
		{ResourceKey: "a", URL: "https://assets.example.com/a?sig=ok"},
		{ResourceKey: "b", URL: "https://assets.example.com/b?sig=ok"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %+v got %+v", i, want[i], got[i])
		}
	}

	empty, err := svc.SignURLs(context.Background(), []string{})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v %v", empty, err)
	}
}

func TestSignURLsAbortsOnFailure(t *testing.T) {
	svc := NewSignatureService("https://assets.example.com", stubSigner{failOn: "b"})

	got, err := svc.SignURLs(context.Background(), []string{"a", "b", "c"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got != nil {
		t.Fatalf("no partial results expected, got %v", got)
	}
}

package asset

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/assets/internal/storage"
)

type stubNodes struct {
	spaces  map[string]string
	members map[string][]uuid.UUID
	err     error
}

func (s *stubNodes) SpaceOfNode(_ context.Context, nodeID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	space, ok := s.spaces[nodeID]
	if !ok {
		return "", ErrNodeNotFound
	}
	return space, nil
}

func (s *stubNodes) IsSpaceMember(_ context.Context, spaceID string, userID uuid.UUID) (bool, error) {
	for _, id := range s.members[spaceID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type stubPresigner struct {
	calls []string
	err   error
}

func (s *stubPresigner) PresignUpload(_ context.Context, key string, ttl time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.calls = append(s.calls, key)
	return "https://bucket.example.com/" + key + "?X-Amz-Expires=" + ttl.String(), nil
}

type stubReservations struct {
	saved   map[string]Reservation
	deleted []string
	saveErr error
}

func newStubReservations() *stubReservations {
	return &stubReservations{saved: map[string]Reservation{}}
}

func (s *stubReservations) Save(_ context.Context, r Reservation, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[r.Token] = r
	return nil
}

func (s *stubReservations) Get(_ context.Context, token string) (*Reservation, error) {
	r, ok := s.saved[token]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return &r, nil
}

func (s *stubReservations) Delete(_ context.Context, token string) error {
	delete(s.saved, token)
	s.deleted = append(s.deleted, token)
	return nil
}

type stubResults struct {
	stored   map[string]UploadResult
	inserted []StoredAsset
	listErr  error
}

func (s *stubResults) ListByTokens(_ context.Context, assetType Type, tokens []string) ([]UploadResult, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []UploadResult
	// ordem diferente da entrada, como um SELECT sem ORDER BY
	for i := len(tokens) - 1; i >= 0; i-- {
		if r, ok := s.stored[tokens[i]]; ok && r.Type == assetType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubResults) InsertAsset(_ context.Context, a StoredAsset) error {
	s.inserted = append(s.inserted, a)
	return nil
}

type stubObjects struct {
	objects map[string]storage.ObjectInfo
	err     error
}

func (s *stubObjects) Stat(_ context.Context, key string) (*storage.ObjectInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	info, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &info, nil
}

func (s *stubObjects) Bucket() string { return "assets" }

type stubSigner struct {
	failOn string
}

func (s stubSigner) SignatureURL(host, key string) (string, error) {
	if key == s.failOn {
		return "", errors.New("falha de assinatura")
	}
	return strings.TrimRight(host, "/") + "/" + key + "?sig=ok", nil
}

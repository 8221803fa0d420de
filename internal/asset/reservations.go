package asset

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const reservationPrefix = "asset:upload:"

// RedisReservations guarda reservas de upload no Redis com expiração.
type RedisReservations struct {
	client redis.Cmdable
}

// NewRedisReservations cria o store sobre um cliente go-redis.
func NewRedisReservations(client redis.Cmdable) *RedisReservations {
	return &RedisReservations{client: client}
}

func reservationKey(token string) string {
	return reservationPrefix + token
}

func (s *RedisReservations) Save(ctx context.Context, r Reservation, ttl time.Duration) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, reservationKey(r.Token), payload, ttl).Err()
}

func (s *RedisReservations) Get(ctx context.Context, token string) (*Reservation, error) {
	raw, err := s.client.Get(ctx, reservationKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	var r Reservation
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RedisReservations) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, reservationKey(token)).Err()
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

// RedisStore keeps the session under a single key. The key has no TTL: an
// expired access token can still be refreshed on restore.
type RedisStore struct {
	client *redis.Client
	key    string
	sealer *Sealer
}

func NewRedisStore(client *redis.Client, key string, sealer *Sealer) *RedisStore {
	return &RedisStore{client: client, key: key, sealer: sealer}
}

func (s *RedisStore) Load(ctx context.Context) (*models.Session, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decode(s.sealer, payload)
}

func (s *RedisStore) Save(ctx context.Context, session *models.Session) error {
	payload, err := encode(s.sealer, session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

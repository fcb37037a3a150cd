package outcome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"soulbound/internal/achievement/models"
	"soulbound/internal/resolution"
	"soulbound/pkg/platform/sentinel"
)

const keyPrefix = "soulbound:outcome:"

// RedisStore keeps outcomes as JSON strings with a TTL so instances sharing
// the registry answer polls consistently.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, o models.Outcome) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+string(o.Token), data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token resolution.Token) (models.Outcome, error) {
	data, err := s.client.Get(ctx, keyPrefix+string(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Outcome{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Outcome{}, fmt.Errorf("redis get outcome: %w", err)
	}
	var o models.Outcome
	if err := json.Unmarshal(data, &o); err != nil {
		return models.Outcome{}, fmt.Errorf("decode outcome: %w", err)
	}
	return o, nil
}

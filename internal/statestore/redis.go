package statestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"soulbound/pkg/platform/sentinel"
)

const (
	fieldVersion = "v"
	fieldData    = "d"
)

// RedisBlob stores each blob as a hash {v: version, d: data} and uses
// WATCH/MULTI for the version check.
type RedisBlob struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisBlob(client *redis.Client) *RedisBlob {
	return &RedisBlob{client: client, keyPrefix: "soulbound:state:"}
}

func (b *RedisBlob) Load(ctx context.Context, key string) ([]byte, uint64, error) {
	vals, err := b.client.HMGet(ctx, b.keyPrefix+key, fieldVersion, fieldData).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis hmget: %w", err)
	}
	if vals[0] == nil {
		return nil, 0, nil
	}
	version, data, err := decodeRedisEntry(vals[0], vals[1])
	if err != nil {
		return nil, 0, err
	}
	return data, version, nil
}

func (b *RedisBlob) CompareAndSwap(ctx context.Context, key string, version uint64, data []byte) (uint64, error) {
	redisKey := b.keyPrefix + key
	next := version + 1

	err := b.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, redisKey, fieldVersion).Uint64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return fmt.Errorf("redis hget: %w", err)
		}
		if current != version {
			return sentinel.ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, redisKey, fieldVersion, next, fieldData, data)
			return nil
		})
		return err
	}, redisKey)

	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, sentinel.ErrConflict):
		return 0, sentinel.ErrConflict
	default:
		return 0, fmt.Errorf("redis cas: %w", err)
	}
}

func decodeRedisEntry(rawVersion, rawData any) (uint64, []byte, error) {
	vs, ok := rawVersion.(string)
	if !ok {
		return 0, nil, fmt.Errorf("redis version has type %T", rawVersion)
	}
	version, err := strconv.ParseUint(vs, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("parse redis version: %w", err)
	}
	ds, ok := rawData.(string)
	if !ok {
		return 0, nil, fmt.Errorf("redis data has type %T", rawData)
	}
	return version, []byte(ds), nil
}

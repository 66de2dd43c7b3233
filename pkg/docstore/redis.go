package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/farmledger/pkg/redis"
)

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DocumentKey(prefix, name string) string
}

// Redis stores each document as one string value under fl:doc:<prefix>:<key>.
type Redis struct {
	client redisKV
	prefix string
}

func NewRedis(client redisKV, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.client.DocumentKey(r.prefix, key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (r *Redis) Save(ctx context.Context, key string, body []byte) error {
	if err := r.client.Set(ctx, r.client.DocumentKey(r.prefix, key), string(body), 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

package catalog

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	apperrors "towquote/internal/errors"
)

const DefaultRedisPrefix = "towquote:config:"

// RedisSource reads documents stored as plain strings under <prefix><name>.
type RedisSource struct {
	redis  *redis.Client
	prefix string
}

func NewRedisSource(client *redis.Client, prefix string) *RedisSource {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisSource{redis: client, prefix: prefix}
}

func (s *RedisSource) Document(ctx context.Context, name string) ([]byte, error) {
	body, err := s.redis.Get(ctx, s.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.Configuration("missing configuration document %q", name)
	}
	if err != nil {
		return nil, apperrors.Upstream(err, "read %s from redis", name)
	}
	return body, nil
}

func (s *RedisSource) Put(ctx context.Context, name string, body []byte) error {
	return s.redis.Set(ctx, s.prefix+name, body, 0).Err()
}

package convinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/go-redis/redis/v8"

	"github.com/pelangilabs/moltbot/conversation"
)

// RedisLocker exclusión mutua por conversación sobre SETNX con TTL. El TTL
// evita locks huérfanos si el proceso muere con la invocación en vuelo.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

var _ conversation.Locker = (*RedisLocker)(nil)

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: "moltbot:lock:",
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := l.client.SetNX(ctx, l.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, errx.Wrap(err, "failed to acquire lock", errx.TypeInternal).
			WithDetail("key", key)
	}
	return acquired, nil
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return errx.Wrap(err, "failed to release lock", errx.TypeInternal).
			WithDetail("key", key)
	}
	return nil
}

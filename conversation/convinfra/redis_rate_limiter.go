package convinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/go-redis/redis/v8"

	"github.com/pelangilabs/moltbot/conversation"
)

// RedisRateLimiter tope de mensajes entrantes por sender en ventana fija de
// un minuto (INCR + EXPIRE). Protege el gasto del clasificador frente a
// senders insistentes.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

var _ conversation.RateLimiter = (*RedisRateLimiter)(nil)

func NewRedisRateLimiter(client *redis.Client, limitPerMinute int) *RedisRateLimiter {
	if limitPerMinute <= 0 {
		limitPerMinute = 20
	}
	return &RedisRateLimiter{
		client: client,
		limit:  limitPerMinute,
		window: time.Minute,
	}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, sender string) (bool, error) {
	key := "moltbot:rate:" + sender

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, errx.Wrap(err, "failed to increment rate counter", errx.TypeInternal).
			WithDetail("sender", sender)
	}

	// primera cuenta de la ventana: arranca el vencimiento
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return false, errx.Wrap(err, "failed to set rate window", errx.TypeInternal).
				WithDetail("sender", sender)
		}
	}

	return count <= int64(r.limit), nil
}

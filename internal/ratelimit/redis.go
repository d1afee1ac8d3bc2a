package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Префиксы ключей для разных действий
const (
	PrefixShorten  = "ratelimit:shorten:"
	PrefixRedirect = "ratelimit:redirect:"
)

// fixedWindowScript увеличивает счётчик и при первом запросе задаёт время жизни окна.
// Возвращает {счётчик, оставшиеся миллисекунды окна}.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter хранит окна в Redis, лимит общий для всех экземпляров сервиса
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	limit  int
	period time.Duration
	now    func() time.Time
}

// NewRedisLimiter создаёт лимитер на limit запросов за period с префиксом ключей prefix
func NewRedisLimiter(client redis.Scripter, prefix string, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		period: period,
		now:    time.Now,
	}
}

// Allow учитывает запрос ключа
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.period.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	count := int(res[0])
	return Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining(l.limit, count),
		ResetAt:   l.now().Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}

package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/evyataryagoni/issflyover/internal/logger"
	"github.com/redis/go-redis/v9"
)

// fixedWindow increments the counter for the current window and arms its
// expiry on the first hit. Running both in one script keeps them atomic.
var fixedWindow = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter shares one fixed-window counter per client across all instances
//
// Key format: iss:ratelimit:{key}:{window start in unix ms}
// Windows expire on their own, so no cleanup is needed.
type RedisLimiter struct {
	client *redis.Client
	rate   Rate
	now    func() time.Time
	logger *logger.Logger
}

// NewRedisLimiter connects to Redis and returns a limiter backed by it
//
// Parameters:
//   - addr, password, db: Redis connection settings
//   - rate: request budget per client
//   - log: logger for fail-open warnings (optional, can be nil)
func NewRedisLimiter(addr, password string, db int, rate Rate, log *logger.Logger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	return NewRedisLimiterWithClient(client, rate, log), nil
}

// NewRedisLimiterWithClient wraps an existing client; Close will close it
func NewRedisLimiterWithClient(client *redis.Client, rate Rate, log *logger.Logger) *RedisLimiter {
	if log == nil {
		log = logger.NewDefault()
	}
	if rate.Window <= 0 {
		rate.Window = time.Second
	}
	return &RedisLimiter{
		client: client,
		rate:   rate,
		now:    time.Now,
		logger: log.WithComponent("RedisLimiter"),
	}
}

// Allow implements Limiter
// Redis errors fail open: the request is allowed and a warning is logged.
func (l *RedisLimiter) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	window := l.now().Truncate(l.rate.Window).UnixMilli()
	redisKey := fmt.Sprintf("%s:%s:%d", KeyPrefix, key, window)

	count, err := fixedWindow.Run(ctx, l.client, []string{redisKey}, l.rate.Window.Milliseconds()).Int64()
	if err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("Rate limit check failed, allowing request")
		return true
	}

	return count <= int64(l.rate.Burst())
}

// Close closes the Redis connection
func (l *RedisLimiter) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}

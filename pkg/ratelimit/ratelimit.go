package ratelimit

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arnavshah/duty-roster-api/pkg/config"
)

const keyPrefix = "roster:ratelimit:"

// Limiter counts requests per API key per UTC day in Redis
type Limiter struct {
	rdb    *goredis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewLimiter connects to Redis and checks it with a ping
func NewLimiter(cfg *config.RedisConfig, logger *zap.Logger) (*Limiter, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("rate limiting enabled", zap.String("addr", cfg.Addr))
	return &Limiter{rdb: rdb, logger: logger, now: time.Now}, nil
}

// Key returns the counter key of an identity for the day containing t
func Key(identity string, t time.Time) string {
	return keyPrefix + identity + ":" + t.UTC().Format("2006-01-02")
}

// Allow counts one request for identity and reports whether it is within
// limit, along with the requests left today. A limit <= 0 never blocks.
func (l *Limiter) Allow(ctx context.Context, identity string, limit int) (bool, int, error) {
	key := Key(identity, l.now())

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if n == 1 {
		// expire after the day ends, with an hour of slack
		if err := l.rdb.Expire(ctx, key, 25*time.Hour).Err(); err != nil {
			l.logger.Warn("set rate limit expiry", zap.String("key", key), zap.Error(err))
		}
	}

	if limit <= 0 {
		return true, 0, nil
	}
	used := int(n)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return used <= limit, remaining, nil
}

// Close closes the Redis connection
func (l *Limiter) Close() error {
	return l.rdb.Close()
}

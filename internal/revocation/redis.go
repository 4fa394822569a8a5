package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/tokens"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "revoked:"

// RedisLedger shares revocations across instances. Redis errors fall back to the backing ledger.
type RedisLedger struct {
	next       Ledger
	rdb        redis.UniversalClient
	defaultTTL time.Duration
	now        func() time.Time
}

func NewRedisLedger(next Ledger, rdb redis.UniversalClient, defaultTTL time.Duration) *RedisLedger {
	return &RedisLedger{next: next, rdb: rdb, defaultTTL: defaultTTL, now: time.Now}
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return client, nil
}

func (l *RedisLedger) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ok, err := revokeThrough(ctx, l.next, token, expiresAt)
	if ok {
		l.remember(ctx, token, expiresAt.Sub(l.now()))
	}
	return err
}

func (l *RedisLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := l.rdb.Exists(ctx, key(token)).Result()
	if err != nil {
		logging.FromContext(ctx).Warn("revocation_cache_unavailable", "cache", "redis", "error", err)
	} else if n > 0 {
		return true, nil
	}

	revoked, err := l.next.IsRevoked(ctx, token)
	if err != nil {
		return false, err
	}
	if revoked {
		l.remember(ctx, token, l.defaultTTL)
	}
	return revoked, nil
}

func (l *RedisLedger) remember(ctx context.Context, token string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := l.rdb.Set(ctx, key(token), 1, ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("revocation_cache_write_failed", "cache", "redis", "error", err)
	}
}

func key(token string) string {
	return redisKeyPrefix + tokens.Sha256Hex(token)
}

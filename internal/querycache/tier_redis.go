package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTier stores query results in Redis under a key prefix, so several
// console processes share warm reads
type RedisTier struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisTierFromClient wraps a connected client
func NewRedisTierFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisTier {
	if prefix == "" {
		prefix = "backoffice:query:"
	}
	return &RedisTier{client: client, prefix: prefix, ttl: ttl}
}

// Get reads a stored result
func (t *RedisTier) Get(ctx context.Context, key Key) (json.RawMessage, bool, error) {
	data, err := t.client.Get(ctx, t.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key.String(), err)
	}
	return json.RawMessage(data), true, nil
}

// Set writes a result through
func (t *RedisTier) Set(ctx context.Context, key Key, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key.String(), err)
	}
	if err := t.client.Set(ctx, t.redisKey(key), b, t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key.String(), err)
	}
	return nil
}

// DeletePrefix removes the prefix key itself and everything below it
func (t *RedisTier) DeletePrefix(ctx context.Context, prefix Key) error {
	base := t.redisKey(prefix)
	if err := t.client.Del(ctx, base).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", base, err)
	}

	pattern := escapeGlob(base) + "/*"
	if len(prefix) == 0 {
		pattern = escapeGlob(t.prefix) + "*"
	}

	var cursor uint64
	var keysDeleted int
	for {
		keys, nextCursor, err := t.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := t.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("failed to delete some keys", "error", err)
			}
			keysDeleted += len(keys)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	slog.Debug("cache tier prefix deleted", "prefix", prefix.String(), "keys_deleted", keysDeleted)
	return nil
}

// HealthCheck verifies Redis connectivity
func (t *RedisTier) HealthCheck(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (t *RedisTier) Close() error {
	return t.client.Close()
}

func (t *RedisTier) redisKey(key Key) string {
	return t.prefix + key.String()
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}

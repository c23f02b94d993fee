package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/backoffice/internal/models"
)

// RedisRecentStore keeps recent uploads in a Redis list shared by every
// console process
type RedisRecentStore struct {
	client *redis.Client
	key    string
}

// NewRedisRecentStore wraps a client; key defaults to
// "backoffice:recent-uploads"
func NewRedisRecentStore(client *redis.Client, key string) *RedisRecentStore {
	if key == "" {
		key = "backoffice:recent-uploads"
	}
	return &RedisRecentStore{client: client, key: key}
}

func (s *RedisRecentStore) Add(ctx context.Context, asset models.UploadedAsset) error {
	b, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to encode upload: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, b)
	pipe.LTrim(ctx, s.key, 0, RecentLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

func (s *RedisRecentStore) Remove(ctx context.Context, url string) error {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read recent uploads: %w", err)
	}

	for _, item := range raw {
		var a models.UploadedAsset
		if err := json.Unmarshal([]byte(item), &a); err != nil || a.URL != url {
			continue
		}
		if err := s.client.LRem(ctx, s.key, 0, item).Err(); err != nil {
			return fmt.Errorf("failed to remove upload: %w", err)
		}
	}
	return nil
}

func (s *RedisRecentStore) List(ctx context.Context) ([]models.UploadedAsset, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent uploads: %w", err)
	}

	out := make([]models.UploadedAsset, 0, len(raw))
	for _, item := range raw {
		var a models.UploadedAsset
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			slog.Warn("skipping malformed recent upload", "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *RedisRecentStore) ByContext(ctx context.Context, c models.AssetContext) ([]models.UploadedAsset, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterContext(all, c), nil
}

func (s *RedisRecentStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear recent uploads: %w", err)
	}
	return nil
}

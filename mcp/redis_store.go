package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"drakyn/model"

	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "drakyn:tools:"

// RedisStore keeps the tool snapshot in Redis so that every service instance
// behind the same registry starts with a warm catalogue.
type RedisStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisStore returns a store for the catalogue of registry name. ttl of
// zero keeps the entry forever.
func NewRedisStore(rdb *redis.Client, name string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, key: snapshotKeyPrefix + name, ttl: ttl}
}

// DialRedis parses a redis:// URL and returns a connected client.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) Load(ctx context.Context) ([]model.ToolDefinition, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tools []model.ToolDefinition
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("failed to decode cached tools: %w", err)
	}
	return tools, nil
}

func (s *RedisStore) Save(ctx context.Context, tools []model.ToolDefinition) error {
	data, err := json.Marshal(tools)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, data, s.ttl).Err()
}

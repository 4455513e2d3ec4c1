package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient is the subset of redis commands RedisStore uses.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

var _ RedisClient = (*RedisConn)(nil)

// RedisConn is a go-redis connection satisfying RedisClient. Close it on shutdown.
type RedisConn struct {
	cli *redis.Client
}

// NewRedisClient connects to redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*RedisConn, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisConn{cli: c}, nil
}

func (c *RedisConn) Get(ctx context.Context, key string) (string, error) {
	return c.cli.Get(ctx, key).Result()
}

func (c *RedisConn) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.cli.Set(ctx, key, value, expiration).Err()
}

func (c *RedisConn) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *RedisConn) Close() error { return c.cli.Close() }

// RedisStore keeps entries as JSON so several bot replicas share one cache.
// Keys expire after ttl; freshness is still decided by CachedSource's clock.
type RedisStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewRedisStore(client RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(tableID string) string { return "sheet_table:" + tableID }

func (s *RedisStore) Get(ctx context.Context, tableID string) (Entry, bool, error) {
	data, err := s.client.Get(ctx, redisKey(tableID))
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached table %s: %w", tableID, err)
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, tableID string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(tableID), data, s.ttl)
}

func (s *RedisStore) Invalidate(ctx context.Context, tableID string) error {
	return s.client.Del(ctx, redisKey(tableID))
}

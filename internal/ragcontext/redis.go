package ragcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "rag:context"

// RedisStore keeps the context under a single key so several processes
// observe the same import.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return newRedisStore(client, key), nil
}

func newRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Set stores text without expiry. An empty string is stored as-is.
func (s *RedisStore) Set(ctx context.Context, text string) error {
	if err := s.client.Set(ctx, s.key, text, 0).Err(); err != nil {
		return fmt.Errorf("redis set context: %w", err)
	}
	return nil
}

// Get returns "" when the key has never been written.
func (s *RedisStore) Get(ctx context.Context) (string, error) {
	text, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get context: %w", err)
	}
	return text, nil
}

func (s *RedisStore) Has(ctx context.Context) (bool, error) {
	text, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return text != "", nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

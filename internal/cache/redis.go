package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pavelanni/autograder/internal/questionbank"
)

const redisKeyPrefix = "autograder:bank:"

// Redis stores banks as JSON in Redis. Errors degrade to cache misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the Redis server at url and verifies the connection.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (*questionbank.Bank, bool) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !isMiss(err) {
			slog.Warn("bank cache get failed", "error", err)
		}
		return nil, false
	}
	var b questionbank.Bank
	if err := json.Unmarshal(data, &b); err != nil {
		slog.Warn("bank cache decode failed", "error", err)
		return nil, false
	}
	return &b, true
}

func (r *Redis) Set(ctx context.Context, key string, bank *questionbank.Bank) {
	data, err := json.Marshal(bank)
	if err != nil {
		slog.Warn("bank cache encode failed", "error", err)
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, r.ttl).Err(); err != nil {
		slog.Warn("bank cache set failed", "error", err)
	}
}

// isMiss reports whether err only means the key is absent.
func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (r *Redis) Close() error {
	return r.client.Close()
}

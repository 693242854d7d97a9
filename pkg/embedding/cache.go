package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VectorCache caches computed embeddings keyed by content hash, so
// re-ingesting unchanged text never hits the provider twice.
type VectorCache interface {
	Get(ctx context.Context, text string) ([]float32, bool)
	Set(ctx context.Context, text string, vector []float32)
}

type RedisVectorCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisVectorCache(client *redis.Client, ttl time.Duration) *RedisVectorCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisVectorCache{
		client: client,
		prefix: "embed:",
		ttl:    ttl,
	}
}

func (c *RedisVectorCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

func (c *RedisVectorCache) Get(ctx context.Context, text string) ([]float32, bool) {
	raw, err := c.client.Get(ctx, c.key(text)).Bytes()
	if err != nil {
		return nil, false
	}
	var vector []float32
	if err := json.Unmarshal(raw, &vector); err != nil {
		return nil, false
	}
	return vector, true
}

func (c *RedisVectorCache) Set(ctx context.Context, text string, vector []float32) {
	raw, err := json.Marshal(vector)
	if err != nil {
		return
	}
	// Best effort: a failed cache write must not fail the embed call
	c.client.Set(ctx, c.key(text), raw, c.ttl)
}

func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

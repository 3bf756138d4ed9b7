package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const instructionsCacheKey = "instructions:all"

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(ctx context.Context, address string, ttlSeconds int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        address,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetInstructions gets the cached instruction list
func (c *RedisCache) GetInstructions(ctx context.Context) ([]*Instruction, error) {
	data, err := c.client.Get(ctx, instructionsCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var instructions []*Instruction
	if err := json.Unmarshal(data, &instructions); err != nil {
		return nil, err
	}

	return instructions, nil
}

// SetInstructions caches the instruction list with the configured TTL
func (c *RedisCache) SetInstructions(ctx context.Context, instructions []*Instruction) error {
	data, err := json.Marshal(instructions)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, instructionsCacheKey, data, c.ttl).Err()
}

// InvalidateInstructions drops the cached instruction list
func (c *RedisCache) InvalidateInstructions(ctx context.Context) error {
	return c.client.Del(ctx, instructionsCacheKey).Err()
}

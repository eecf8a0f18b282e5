package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/byoma-kusuma/sangha-management-backend/config"
)

var redisClient *redis.Client

// InitRedis connects the shared Redis client used for reference-data
// caching and the close-event advisory lock.
func InitRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	redisClient = client
	log.Printf("✅ Redis connected at %s", cfg.RedisAddr)
	return nil
}

// GetRedisClient returns the shared client, nil when Redis is not configured
func GetRedisClient() *redis.Client {
	return redisClient
}

// AcquireLock takes a best-effort advisory lock (SET NX with TTL).
// Returns false when another holder owns the key. A nil client always
// grants the lock so local setups without Redis keep working.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if redisClient == nil {
		return true, nil
	}
	return redisClient.SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseLock drops an advisory lock taken with AcquireLock
func ReleaseLock(ctx context.Context, key string) error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Del(ctx, key).Err()
}

// CacheGet reads a cached string value; empty string means miss
func CacheGet(ctx context.Context, key string) (string, error) {
	if redisClient == nil {
		return "", nil
	}
	val, err := redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// CacheSet stores a string value with a TTL
func CacheSet(ctx context.Context, key, value string, ttl time.Duration) error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Set(ctx, key, value, ttl).Err()
}

// CacheDelete invalidates a cached key
func CacheDelete(ctx context.Context, key string) error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Del(ctx, key).Err()
}

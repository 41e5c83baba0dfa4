package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetJSON retrieves a value from Redis and unmarshals it into dest
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Bytes() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal(val, dest) // Unmarshal JSON into dest
}

// SetJSON stores value as JSON with a TTL; it fails if the key already exists
func SetJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) (bool, error) {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return false, err // Return error if marshaling fails
	}
	return rdb.SetNX(ctx, key, b, ttl).Result() // Set only if absent
}

// DeleteKey deletes a key from Redis
func DeleteKey(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

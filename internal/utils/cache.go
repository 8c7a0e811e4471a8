package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // redis.Nil comparison
	"fmt"           // Error wrapping
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// ResultsCacheKey holds the serialized tally shown on the results page
const ResultsCacheKey = "results:tally"

// ResultsGenerationKey is bumped by every results invalidation
const ResultsGenerationKey = "results:gen"

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal(val, dest)
}

// SetCache stores value as JSON with a TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// DeleteCache deletes one or more keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// InvalidateCache drops key and bumps its generation counter so fills that started
// before this call cannot store what they read
func InvalidateCache(ctx context.Context, rdb *redis.Client, key, generation string) error {
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generation)
		pipe.Del(ctx, key)
		return nil
	})
	return err
}

// FillCache runs load and stores its result under key, unless the generation counter
// changed while load ran. Cache failures are logged and never hide the loaded value.
func FillCache[T any](ctx context.Context, rdb *redis.Client, key, generation string, ttl time.Duration, load func() (T, error)) (T, error) {
	var (
		val     T
		loadErr error
		loaded  bool
	)
	cacheErr := rdb.Watch(ctx, func(tx *redis.Tx) error {
		val, loadErr = load()
		loaded = true
		if loadErr != nil {
			return nil
		}
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttl)
			return nil
		})
		return err
	}, generation)

	switch {
	case errors.Is(cacheErr, redis.TxFailedErr):
		// Invalidated mid-read; the next request fills it
	case cacheErr != nil:
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"error": cacheErr.Error(),
		}).Warn("Cache fill failed")
	}
	if !loaded {
		// Redis refused the WATCH; serve from the source anyway
		val, loadErr = load()
	}
	return val, loadErr
}

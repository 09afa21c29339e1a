// Package cache is a small JSON key/value cache on Redis. When Redis is not
// configured or unreachable, values live in an in-process map with the same
// TTL semantics so sessions keep working on a single node.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/furnivision/config"
	"github.com/shashiranjanraj/furnivision/pkg/metrics"
)

var RDB *redis.Client
var Ctx = context.Background()

type memEntry struct {
	raw       []byte
	expiresAt time.Time
}

var (
	memMu sync.Mutex
	mem   = map[string]memEntry{}
)

// Connect initialises the Redis client and verifies the connection with a ping.
// Returns an error so the caller can react (log warning, fall back, or abort).
func Connect() error {
	if config.RedisAddr() == "" {
		RDB = nil
		return fmt.Errorf("cache: REDIS_ADDR not set")
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := RDB.Ping(Ctx).Err(); err != nil {
		_ = RDB.Close()
		RDB = nil // fall back to the in-process store
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

// Driver reports which backend is serving reads and writes.
func Driver() string {
	if RDB == nil {
		return "memory"
	}
	return "redis"
}

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a cache hit, false on miss or error.
func Get(key string, dest interface{}) bool {
	raw, ok := getRaw(key)
	if !ok {
		metrics.CacheMisses.WithLabelValues(Driver()).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(Driver()).Inc()
	return json.Unmarshal(raw, dest) == nil
}

func getRaw(key string) ([]byte, bool) {
	if RDB != nil {
		val, err := RDB.Get(Ctx, key).Bytes()
		if err != nil {
			return nil, false
		}
		return val, true
	}

	memMu.Lock()
	defer memMu.Unlock()
	e, ok := mem[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(mem, key)
		return nil, false
	}
	return e.raw, true
}

// Set stores value under key for the given TTL. A zero TTL never expires.
func Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if RDB != nil {
		return RDB.Set(Ctx, key, data, ttl).Err()
	}

	e := memEntry{raw: data}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	memMu.Lock()
	mem[key] = e
	memMu.Unlock()
	return nil
}

// Del removes one or more keys.
func Del(keys ...string) error {
	if RDB != nil {
		return RDB.Del(Ctx, keys...).Err()
	}
	memMu.Lock()
	for _, k := range keys {
		delete(mem, k)
	}
	memMu.Unlock()
	return nil
}

// Forget is an alias for Del (Laravel-style).
func Forget(key string) error {
	return Del(key)
}

// Sweep drops expired in-process entries and returns how many were removed.
// It is a no-op on Redis, which expires keys itself.
func Sweep() int {
	if RDB != nil {
		return 0
	}
	now := time.Now()
	n := 0
	memMu.Lock()
	for k, e := range mem {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(mem, k)
			n++
		}
	}
	memMu.Unlock()
	return n
}

// Close releases the Redis connection, if any.
func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}

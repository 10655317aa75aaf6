package cache

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lookup cache keys. Only dropdown payloads are cached; calendar and
// forecast reads are always computed on demand.
const (
	VaccineListKey = "lookup:vaccines"
	ActivePensKey  = "lookup:active-pens"

	lookupTTL = 5 * time.Minute
)

var client *redis.Client

// Init initializes the Redis connection. The cache is optional; when
// unavailable every read falls through to the database.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "redis"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetLookup returns a cached lookup payload, or ok=false on miss/outage.
func GetLookup(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetLookup stores a lookup payload with the standard TTL.
func SetLookup(ctx context.Context, key string, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, lookupTTL)
}

// InvalidateLookups drops the cached dropdown payloads. Called after any
// write that can change the vaccine list or pen occupancy view.
func InvalidateLookups(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, VaccineListKey, ActivePensKey)
}

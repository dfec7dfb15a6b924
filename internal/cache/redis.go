package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/storage/redis/v3"
)

const generationKey = "dashboard:generation"

// Redis stores entries in Redis under a generation prefix. Invalidate
// moves to a new generation; old entries age out through their TTL.
type Redis struct {
	store *redis.Storage
	ttl   time.Duration
}

// NewRedis connects to the Redis server at url.
func NewRedis(url string, ttl time.Duration) *Redis {
	return &Redis{
		store: redis.New(redis.Config{URL: url}),
		ttl:   ttl,
	}
}

// Storage exposes the underlying storage so other middleware can share the connection.
func (r *Redis) Storage() *redis.Storage {
	return r.store
}

// Generation returns the current generation, "0" before the first Invalidate.
func (r *Redis) Generation(ctx context.Context) string {
	gen, err := r.store.GetWithContext(ctx, generationKey)
	if err != nil || len(gen) == 0 {
		return "0"
	}
	return string(gen)
}

func (r *Redis) Get(ctx context.Context, gen, key string) ([]byte, bool) {
	value, err := r.store.GetWithContext(ctx, entryKey(gen, key))
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if len(value) == 0 {
		return nil, false
	}
	return value, true
}

// Set writes under gen. A write for a superseded generation lands on a key
// no reader asks for and expires with the TTL.
func (r *Redis) Set(ctx context.Context, gen, key string, value []byte) {
	if err := r.store.SetWithContext(ctx, entryKey(gen, key), value, r.ttl); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context) {
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)
	if err := r.store.SetWithContext(ctx, generationKey, []byte(gen), 0); err != nil {
		slog.Warn("cache invalidate failed", "error", err)
	}
}

// Close releases the connection.
func (r *Redis) Close() error {
	return r.store.Close()
}

func entryKey(gen, key string) string {
	return "dashboard:" + gen + ":" + key
}

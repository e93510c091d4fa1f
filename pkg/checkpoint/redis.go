package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis checkpoint backend.
type RedisConfig struct {
	// Address is the Redis server address (e.g., "localhost:6379")
	Address string

	// Password for Redis authentication (optional)
	Password string

	// Database number to use (default: 0)
	Database int

	// Key is the hash key holding all entries for one scan scope.
	Key string

	// TTL is the time-to-live for the hash (0 = no expiration)
	TTL time.Duration

	// Timeout for Redis operations
	Timeout time.Duration
}

// DefaultRedisConfig returns sensible defaults.
func DefaultRedisConfig(address string) RedisConfig {
	return RedisConfig{
		Address: address,
		Key:     "charflow:checkpoint",
		TTL:     24 * time.Hour,
		Timeout: 5 * time.Second,
	}
}

// RedisBackend stores entries in a Redis hash, one field per path, so
// scans can resume from a different host.
type RedisBackend struct {
	cfg    RedisConfig
	client *redis.Client
}

// NewRedisBackend connects and verifies the server is reachable.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.Database,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBackend{cfg: cfg, client: client}, nil
}

// Load reads the whole hash.
func (b *RedisBackend) Load(ctx context.Context) (map[string]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	fields, err := b.client.HGetAll(ctx, b.cfg.Key).Result()
	if err != nil {
		return nil, fmt.Errorf("load checkpoints from Redis: %w", err)
	}

	entries := make(map[string]Entry, len(fields))
	for path, raw := range fields {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue // skip corrupt fields rather than failing the scan
		}
		entries[path] = e
	}
	return entries, nil
}

// Save writes one hash field and refreshes the TTL.
func (b *RedisBackend) Save(ctx context.Context, e Entry) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode checkpoint entry: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.HSet(ctx, b.cfg.Key, e.Path, data)
	if b.cfg.TTL > 0 {
		pipe.Expire(ctx, b.cfg.Key, b.cfg.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save checkpoint to Redis: %w", err)
	}
	return nil
}

// Clear deletes the hash.
func (b *RedisBackend) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	if err := b.client.Del(ctx, b.cfg.Key).Err(); err != nil {
		return fmt.Errorf("clear checkpoints in Redis: %w", err)
	}
	return nil
}

// Close releases the client connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

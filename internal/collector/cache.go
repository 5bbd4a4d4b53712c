package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"StockAnalyzer/internal/model"
)

// DefaultCacheTTL is how long fetched bars are reused.
const DefaultCacheTTL = 5 * time.Minute

// Cache stores raw fetch results keyed by symbol and period.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]model.OHLCV, bool)
	Set(ctx context.Context, key string, bars []model.OHLCV)
}

func cacheKey(source, symbol string, period model.Period) string {
	return fmt.Sprintf("stockanalyzer:bars:%s:%s:%s", source, symbol, period)
}

type memoryEntry struct {
	bars    []model.OHLCV
	expires time.Time
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates a cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]model.OHLCV, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	out := make([]model.OHLCV, len(e.bars))
	copy(out, e.bars)
	return out, true
}

func (c *MemoryCache) Set(_ context.Context, key string, bars []model.OHLCV) {
	stored := make([]model.OHLCV, len(bars))
	copy(stored, bars)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{bars: stored, expires: c.now().Add(c.ttl)}
}

// Len returns the number of entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RedisConfig configures the Redis cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache stores JSON-encoded bars in Redis with an expiry.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and pings the server.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	slog.Info("redis cache connected", "addr", cfg.Addr, "ttl", ttl)
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get treats any Redis or decode error as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]model.OHLCV, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			slog.Warn("redis cache get", "key", key, "error", err)
		}
		return nil, false
	}
	var bars []model.OHLCV
	if err := json.Unmarshal(data, &bars); err != nil {
		slog.Warn("redis cache decode", "key", key, "error", err)
		return nil, false
	}
	return bars, true
}

func (c *RedisCache) Set(ctx context.Context, key string, bars []model.OHLCV) {
	data, err := json.Marshal(bars)
	if err != nil {
		slog.Warn("redis cache encode", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("redis cache set", "key", key, "error", err)
	}
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error { return c.client.Close() }

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/procurement-dashboard/internal/charts"
	"github.com/andresuchdata/procurement-dashboard/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL    = 3 * time.Minute
	pingTimeout   = 5 * time.Second
	scanBatchSize = 100
)

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redis and verifies the connection with a ping.
func NewRedis(cfg config.CacheConfig) (PreparedCache, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &redisCache{client: client, ttl: cacheTTL(cfg)}, nil
}

// redisOptions prefers REDIS_URL and falls back to host, port and db.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}
	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func cacheTTL(cfg config.CacheConfig) time.Duration {
	if cfg.TTLSeconds <= 0 {
		return defaultTTL
	}
	return time.Duration(cfg.TTLSeconds) * time.Second
}

func (c *redisCache) Get(ctx context.Context, key string) (*charts.Prepared, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var p charts.Prepared
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, false, fmt.Errorf("decode prepared cache: %w", err)
	}
	return &p, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, p *charts.Prepared) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prepared cache: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateAll unlinks every prepared entry, one SCAN batch at a time.
func (c *redisCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, preparedKeyPrefix+":*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink failed: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return flush()
}

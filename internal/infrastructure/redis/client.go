// Package redis wraps the go-redis client used for deduplication guards.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

func NewClient(ctx context.Context, cfg config.Redis) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Deduper claims keys with SET NX so that one event is handled once across
// consumer restarts and replicas.
type Deduper struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewDeduper(client *goredis.Client, prefix string, ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Deduper{client: client, prefix: prefix, ttl: ttl}
}

func (d *Deduper) key(k string) string {
	return d.prefix + k
}

// Claim returns false when the key was already taken.
func (d *Deduper) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(key), time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (d *Deduper) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, d.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

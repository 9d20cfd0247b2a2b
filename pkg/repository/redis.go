package repository

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/example/medicineapp/pkg/config"
)

// RedisKV is the external key-value store backing the herb-stock subsystem.
// It satisfies stock.KV.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(cfg *config.RedisConfig) *RedisKV {
	return &RedisKV{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
	}
}

func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the stored value; ok is false when the key has never been set.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/polyscan/internal/domain"
	"github.com/alejandrodnm/polyscan/internal/ports"
)

// RedisConfig son los parámetros de conexión a Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis guarda cada ScanResult como JSON con expiración nativa.
// Permite compartir la caché entre varias instancias del dashboard.
//
// Esquema de claves:
//
//	polyscan:scan:{min_reward|max_days|min_liquidity} - string JSON
type Redis struct {
	rdb *redis.Client
}

// NewRedis conecta con Redis y verifica la conexión con un PING.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache.NewRedis: ping %s: %w", cfg.Addr, err)
	}
	return &Redis{rdb: rdb}, nil
}

func scanKey(key string) string { return "polyscan:scan:" + key }

func (r *Redis) Get(ctx context.Context, key string) (domain.ScanResult, bool, error) {
	data, err := r.rdb.Get(ctx, scanKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScanResult{}, false, nil
		}
		return domain.ScanResult{}, false, fmt.Errorf("cache.Redis.Get %s: %w", key, err)
	}

	var result domain.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.ScanResult{}, false, fmt.Errorf("cache.Redis.Get %s: unmarshal: %w", key, err)
	}
	return result, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, result domain.ScanResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache.Redis.Set %s: marshal: %w", key, err)
	}
	if err := r.rdb.Set(ctx, scanKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Set %s: %w", key, err)
	}
	return nil
}

// Ping comprueba la conexión (lo usa /api/health).
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Ping: %w", err)
	}
	return nil
}

// Close cierra la conexión.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

var _ ports.ResultCache = (*Redis)(nil)

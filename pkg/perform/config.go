package perform

import (
	"context"
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the connection settings for a Redis-backed result
// store. Fields are populated from environment variables via
// github.com/caarlos0/env.
type RedisConfig struct {
	ConnectionURL  string        `env:"HANDOFF_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	KeyPrefix      string        `env:"HANDOFF_REDIS_KEY_PREFIX" envDefault:"perform"`
	SlotTTL        time.Duration `env:"HANDOFF_REDIS_SLOT_TTL" envDefault:"10m"`
	ConnectTimeout time.Duration `env:"HANDOFF_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// LoadRedisConfig reads RedisConfig from the environment, loading a .env
// file first when one is present.
func LoadRedisConfig() (RedisConfig, error) {
	// The .env file is optional; a missing one is not an error.
	_ = godotenv.Load()

	var cfg RedisConfig
	if err := env.Parse(&cfg); err != nil {
		return RedisConfig{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// NewRedisStoreFromConfig connects to Redis using cfg and returns a store on
// the established client. The connection is verified with a ping bounded by
// cfg.ConnectTimeout.
func NewRedisStoreFromConfig[T any](ctx context.Context, cfg RedisConfig, opts ...StoreOption) (*RedisStore[T], error) {
	connOpt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client := redis.NewClient(connOpt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return NewRedisStore[T](client, cfg.KeyPrefix, cfg.SlotTTL, opts...), nil
}

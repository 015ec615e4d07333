package source

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/fanout/pkg/common/validation"
)

// RedisConfig configures a RedisList.
type RedisConfig struct {
	// Redis is the client used for every command.
	Redis redis.UniversalClient

	// Key names the Redis list.
	Key string

	// Timeout bounds each Load or Store call. Defaults to 5s.
	Timeout time.Duration

	// TTL, when positive, expires the list after Store.
	TTL time.Duration
}

// RedisList reads a collection from a Redis list and writes results back to
// one.
type RedisList struct {
	config RedisConfig
}

// NewRedisList validates config and returns a RedisList.
func NewRedisList(config RedisConfig) (*RedisList, error) {
	if err := validation.ValidateNotNil("source", "redis", config.Redis); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty("source", "key", config.Key); err != nil {
		return nil, err
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &RedisList{config: config}, nil
}

// Key returns the list key.
func (l *RedisList) Key() string {
	return l.config.Key
}

// Load returns every element of the list in order. A missing key is an
// empty collection.
func (l *RedisList) Load(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	items, err := l.config.Redis.LRange(ctx, l.config.Key, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read redis list %q: %w", l.config.Key, err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// Store replaces the list with values in a single transaction.
func (l *RedisList) Store(ctx context.Context, values []string) error {
	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	_, err := l.config.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, l.config.Key)
		if len(values) > 0 {
			args := make([]any, len(values))
			for i, v := range values {
				args[i] = v
			}
			pipe.RPush(ctx, l.config.Key, args...)
		}
		if l.config.TTL > 0 {
			pipe.Expire(ctx, l.config.Key, l.config.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write redis list %q: %w", l.config.Key, err)
	}
	return nil
}

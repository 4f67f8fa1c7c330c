// Package kv is a small key/value store used to persist the signed-in user
// between runs. Backends are SQLite (default), Redis, and in-memory.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/theirongolddev/tripbudget/internal/config"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv: store closed")

// Store is a byte-valued key/value store.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Timestamped is implemented by stores that record write times.
type Timestamped interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, bool, error)
}

// Open builds the backend named by cfg.Backend.
func Open(cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		return OpenSQLite(config.Config{Session: cfg}.SessionPath())
	case config.BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("kv: redis backend needs an address")
		}
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		return NewRedis(client, cfg.KeyPrefix), nil
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", cfg.Backend)
	}
}

// Package store provides the key/value persistence behind the client
// cache. It plays the part browser localStorage plays for the web client:
// a best-effort store that can always be discarded and refetched.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookverse/bookverse/pkg/config"
)

var (
	// ErrNotFound is returned by Get when the key holds no value
	ErrNotFound = errors.New("store: key not found")
	// ErrClosed is returned when a store is used after Close
	ErrClosed = errors.New("store: closed")
)

// KV is a string-keyed byte store
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open creates the store selected by cfg.Backend
func Open(cfg *config.StorageConfig, logLevel string) (KV, error) {
	switch cfg.Backend {
	case "", config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendRedis:
		return NewRedisStore(cfg.RedisURL)
	case config.BackendBadger:
		return NewBadgerStore(cfg.BadgerPath)
	case config.BackendPostgres:
		return NewSQLStore(cfg.DatabaseURL, logLevel)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

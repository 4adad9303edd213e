// Package cache backs request idempotency: a key is claimed once with SetNX and
// released with Del when the guarded mutation fails.
package cache

import (
	"context"
	"time"
)

// Provider defines the minimal cache operations needed by the service.
type Provider interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
	Close() error
}

// Modes accepted by New.
const (
	ModeNone   = "none"
	ModeMemory = "memory"
	ModeRedis  = "redis"
)

// NoopProvider implements Provider but never stores data.
type NoopProvider struct{}

// SetNX pretends to store the value and reports success.
func (NoopProvider) SetNX(context.Context, string, []byte, time.Duration) (bool, error) {
	return true, nil
}

// Del is a no-op for the noop cache.
func (NoopProvider) Del(context.Context, string) error { return nil }

// Close is a no-op.
func (NoopProvider) Close() error { return nil }

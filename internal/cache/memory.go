package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryProvider is an in-process Provider with per-key expiry.
type MemoryProvider struct {
	mu   sync.Mutex
	data map[string]item
	now  func() time.Time
}

type item struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryProvider creates an empty in-memory cache.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: make(map[string]item), now: time.Now}
}

// SetNX stores value when key is absent or expired and reports whether it did.
// A non-positive ttl keeps the key until Del.
func (p *MemoryProvider) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if it, ok := p.data[key]; ok && !it.expired(now) {
		return false, nil
	}

	var expires time.Time
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	p.data[key] = item{value: append([]byte(nil), value...), expiresAt: expires}
	p.sweep(now)
	return true, nil
}

// Del removes an entry.
func (p *MemoryProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, key)
	return nil
}

// Close drops every entry.
func (p *MemoryProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = make(map[string]item)
	return nil
}

// Len returns the number of live entries.
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	n := 0
	for _, it := range p.data {
		if !it.expired(now) {
			n++
		}
	}
	return n
}

// sweep drops expired entries; callers hold mu.
func (p *MemoryProvider) sweep(now time.Time) {
	for key, it := range p.data {
		if it.expired(now) {
			delete(p.data, key)
		}
	}
}

func (it item) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && !now.Before(it.expiresAt)
}

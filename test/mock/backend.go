// test/mock/backend.go
package mock

import (
	"context"
	"sync"
	"time"

	authz_errors "github.com/veridian-id/authz/api/errors"
)

// MemoryBackend is an in-memory stand-in for the distributed cache. Setting
// Fail makes every call return ErrBackendUnavailable, simulating an L2
// outage.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string][]byte
	Fail    bool

	GetCalls int
	SetCalls int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.GetCalls++
	if b.Fail {
		return nil, authz_errors.ErrBackendUnavailable
	}
	value, ok := b.entries[key]
	if !ok {
		return nil, authz_errors.ErrCacheMiss
	}
	return value, nil
}

func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SetCalls++
	if b.Fail {
		return authz_errors.ErrBackendUnavailable
	}
	b.entries[key] = value
	return nil
}

func (b *MemoryBackend) Del(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail {
		return authz_errors.ErrBackendUnavailable
	}
	delete(b.entries, key)
	return nil
}

// SetFail toggles the simulated outage.
func (b *MemoryBackend) SetFail(fail bool) {
	b.mu.Lock()
	b.Fail = fail
	b.mu.Unlock()
}

// Contains reports whether key is present, bypassing failure simulation.
func (b *MemoryBackend) Contains(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[key]
	return ok
}

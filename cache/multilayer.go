// api/cache/multilayer.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	authz_errors "github.com/veridian-id/authz/api/errors"
	logger "github.com/veridian-id/authz/api/logging"
	"github.com/veridian-id/authz/api/metrics"
)

// Options tunes the multi-layer cache. Validate at config load time; the
// constructor rejects values that would break the TTL invariants.
type Options struct {
	L1MaxCapacity     int
	L1TTL             time.Duration
	JitterRange       time.Duration
	LoadTimeout       time.Duration
	L2FallbackEnabled bool

	BloomFilterEnabled    bool
	BloomExpectedElements uint
	BloomFalsePositives   float64
}

// MultiLayer composes the L1 in-process cache and the L2 distributed cache
// behind one lookup path. L1 is consulted first; L2 is the cross-instance
// source of truth. The two may disagree for up to L1's TTL, a bounded and
// accepted inconsistency. Any L2 error degrades the call to the L1 result
// immediately, without inline retries and without blocking on L2 recovery.
type MultiLayer struct {
	l1     *L1Cache
	l2     Backend
	filter *ExistenceFilter
	dedup  *Deduplicator
	jitter *Jitter
	sink   metrics.Sink

	fallbackEnabled bool
	fallbacks       atomic.Int64
}

func NewMultiLayer(backend Backend, opts Options, sink metrics.Sink) (*MultiLayer, error) {
	if opts.L1MaxCapacity <= 0 {
		return nil, fmt.Errorf("l1 max capacity must be positive, got %d", opts.L1MaxCapacity)
	}
	if opts.L1TTL <= 0 {
		return nil, fmt.Errorf("l1 ttl must be positive, got %s", opts.L1TTL)
	}
	if opts.LoadTimeout <= 0 {
		return nil, fmt.Errorf("load timeout must be positive, got %s", opts.LoadTimeout)
	}
	jitter, err := NewJitter(opts.JitterRange)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = metrics.Noop{}
	}

	var filter *ExistenceFilter
	if opts.BloomFilterEnabled {
		filter = NewExistenceFilter(opts.BloomExpectedElements, opts.BloomFalsePositives)
	}

	return &MultiLayer{
		l1:              NewL1Cache(opts.L1MaxCapacity, opts.L1TTL),
		l2:              backend,
		filter:          filter,
		dedup:           NewDeduplicator(opts.LoadTimeout, sink),
		jitter:          jitter,
		sink:            sink,
		fallbackEnabled: opts.L2FallbackEnabled,
	}, nil
}

// Jitter exposes the jitter policy so callers can reason about staleness
// bounds (nominal TTL + jitter half).
func (m *MultiLayer) Jitter() *Jitter {
	return m.jitter
}

// Fallbacks reports how many times an L2 failure degraded a call to L1-only.
func (m *MultiLayer) Fallbacks() int64 {
	return m.fallbacks.Load()
}

// Get looks a key up in L1, then L2. The bool reports whether a value was
// found anywhere. L2 failures are absorbed here: the caller sees a miss, the
// fallback counter records the degradation.
func (m *MultiLayer) Get(ctx context.Context, tenantID, key string) ([]byte, bool) {
	namespaced := TenantKey(tenantID, key)

	if value, ok := m.l1.Get(namespaced); ok {
		m.sink.IncrL1Hit(ctx, tenantID)
		return value, true
	}
	m.sink.IncrL1Miss(ctx, tenantID)

	if !m.filter.MightExist(namespaced) {
		m.sink.IncrBloomReject(ctx, tenantID)
		return nil, false
	}

	data, err := m.l2.Get(ctx, namespaced)
	if err != nil {
		if !errors.Is(err, authz_errors.ErrCacheMiss) {
			m.recordFallback(ctx, tenantID, namespaced, err)
		} else {
			m.sink.IncrL2Miss(ctx, tenantID)
		}
		return nil, false
	}

	value, err := decodeEntry(data)
	if err != nil {
		logger.Error("Corrupt L2 cache entry, treating as miss",
			zap.String("key", namespaced),
			zap.Error(err))
		return nil, false
	}

	m.sink.IncrL2Hit(ctx, tenantID)
	m.l1.Set(namespaced, value)
	return value, true
}

// GetOrLoad returns the cached value for key, loading it from the backing
// store on a miss. The load path is: singleflight -> existence filter -> L2
// -> loader, with the jittered TTL computed once per real load. On success
// both layers are populated and the filter learns the key. Loader errors
// propagate to every merged caller; nothing is cached on failure.
func (m *MultiLayer) GetOrLoad(ctx context.Context, tenantID, key string, nominalTTL time.Duration, loader LoaderFunc) ([]byte, error) {
	namespaced := TenantKey(tenantID, key)

	if value, ok := m.l1.Get(namespaced); ok {
		m.sink.IncrL1Hit(ctx, tenantID)
		return value, nil
	}
	m.sink.IncrL1Miss(ctx, tenantID)

	return m.dedup.Do(ctx, tenantID, key, func(loadCtx context.Context) ([]byte, error) {
		// Only the winning caller runs this; merged callers share the result.
		if m.filter.MightExist(namespaced) {
			data, err := m.l2.Get(loadCtx, namespaced)
			if err == nil {
				if value, decodeErr := decodeEntry(data); decodeErr == nil {
					m.sink.IncrL2Hit(loadCtx, tenantID)
					m.l1.Set(namespaced, value)
					return value, nil
				}
				// Corrupt entry, reload from the backing store below.
			} else if !errors.Is(err, authz_errors.ErrCacheMiss) {
				if !m.fallbackEnabled {
					return nil, fmt.Errorf("%w: %v", authz_errors.ErrBackendUnavailable, err)
				}
				m.recordFallback(loadCtx, tenantID, namespaced, err)
			} else {
				m.sink.IncrL2Miss(loadCtx, tenantID)
			}
		} else {
			m.sink.IncrBloomReject(loadCtx, tenantID)
		}

		value, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}

		m.populate(loadCtx, tenantID, namespaced, value, nominalTTL)
		return value, nil
	})
}

// Set stores a value in both layers with a jittered TTL on L2.
func (m *MultiLayer) Set(ctx context.Context, tenantID, key string, value []byte, nominalTTL time.Duration) {
	m.populate(ctx, tenantID, TenantKey(tenantID, key), value, nominalTTL)
}

// Invalidate drops a key from both layers. Freshness is normally TTL-driven;
// this hook exists for administrative mutation paths that need it sooner.
func (m *MultiLayer) Invalidate(ctx context.Context, tenantID, key string) {
	namespaced := TenantKey(tenantID, key)
	m.l1.Invalidate(namespaced)
	if err := m.l2.Del(ctx, namespaced); err != nil {
		m.recordFallback(ctx, tenantID, namespaced, err)
	}
}

func (m *MultiLayer) populate(ctx context.Context, tenantID, namespaced string, value []byte, nominalTTL time.Duration) {
	effectiveTTL := m.jitter.EffectiveTTL(nominalTTL)
	entry := Entry{
		Value:       value,
		StoredAt:    time.Now(),
		NominalTTL:  nominalTTL,
		JitteredTTL: effectiveTTL,
	}
	data, err := json.Marshal(entry)
	if err == nil {
		if err := m.l2.Set(ctx, namespaced, data, effectiveTTL); err != nil {
			m.recordFallback(ctx, tenantID, namespaced, err)
		}
	}
	m.l1.Set(namespaced, value)
	m.filter.Add(namespaced)
}

func decodeEntry(data []byte) ([]byte, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", authz_errors.ErrInvalidCacheEntry, err)
	}
	return entry.Value, nil
}

func (m *MultiLayer) recordFallback(ctx context.Context, tenantID, namespaced string, err error) {
	m.fallbacks.Add(1)
	m.sink.IncrL2Fallback(ctx, tenantID)
	logger.Warn("L2 cache unavailable, serving from L1 only",
		zap.String("key", namespaced),
		zap.Error(err))
}

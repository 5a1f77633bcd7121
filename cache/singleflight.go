// api/cache/singleflight.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	authz_errors "github.com/veridian-id/authz/api/errors"
	logger "github.com/veridian-id/authz/api/logging"
	"github.com/veridian-id/authz/api/metrics"
)

// LoaderFunc fetches a value from the backing store.
type LoaderFunc func(ctx context.Context) ([]byte, error)

// Deduplicator merges concurrent loads for the same tenant-scoped key into a
// single backing call. All simultaneous callers receive the identical result,
// success or error. Its internal lock is only held to register and look up
// in-flight calls, never across the load itself.
type Deduplicator struct {
	group   singleflight.Group
	timeout time.Duration
	sink    metrics.Sink
}

func NewDeduplicator(loadTimeout time.Duration, sink metrics.Sink) *Deduplicator {
	if sink == nil {
		sink = metrics.Noop{}
	}
	return &Deduplicator{timeout: loadTimeout, sink: sink}
}

// Do executes loader at most once per in-flight key. The load runs under its
// own timeout so a stalled backing store fails every waiter at the same
// moment instead of blocking them indefinitely. The in-flight handle is
// removed on completion, so the next miss starts a fresh load.
func (d *Deduplicator) Do(ctx context.Context, tenantID, key string, loader LoaderFunc) ([]byte, error) {
	namespaced := TenantKey(tenantID, key)

	value, err, shared := d.group.Do(namespaced, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		return loader(loadCtx)
	})
	if shared {
		d.sink.IncrSingleflightMerge(ctx, tenantID)
		logger.Debug("Merged concurrent load", zap.String("key", namespaced))
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", authz_errors.ErrLoadTimeout, err)
		}
		return nil, err
	}
	return value.([]byte), nil
}

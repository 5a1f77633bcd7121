// api/cache/warmer.go
package cache

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	logger "github.com/veridian-id/authz/api/logging"
)

// WarmupFunc pre-loads the hot data of one tenant through the normal cache
// load path.
type WarmupFunc func(ctx context.Context, tenantID string) error

// Warmer pre-populates the cache for configured hot tenants at startup. It
// runs once, in the background, and shares no locks with the request path
// beyond the cache's own internals. Start never blocks the caller.
type Warmer struct {
	tenants []string
	warm    WarmupFunc
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewWarmer(tenants []string, warm WarmupFunc) *Warmer {
	return &Warmer{
		tenants: tenants,
		warm:    warm,
		done:    make(chan struct{}),
	}
}

// Start launches the warmup in a background goroutine with its own
// cancellation handle.
func (w *Warmer) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		defer close(w.done)

		p := pool.New().WithContext(ctx).WithMaxGoroutines(4)
		for _, tenantID := range w.tenants {
			tenantID := tenantID
			p.Go(func(ctx context.Context) error {
				if err := w.warm(ctx, tenantID); err != nil {
					logger.Warn("Cache warmup failed for tenant",
						zap.String("tenantID", tenantID),
						zap.Error(err))
				}
				// Warming is best-effort; one cold tenant must not cancel the rest.
				return nil
			})
		}
		_ = p.Wait()
		logger.Info("Cache warmup finished", zap.Int("tenants", len(w.tenants)))
	}()
}

// Stop cancels any in-flight warmup and waits for the goroutine to exit.
// Stopping a warmer that was never started is a no-op.
func (w *Warmer) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

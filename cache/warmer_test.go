// api/cache/warmer_test.go
package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veridian-id/authz/api/cache"
)

func TestWarmer(t *testing.T) {
	t.Run("WarmsEveryTenant", func(t *testing.T) {
		var (
			mu     sync.Mutex
			warmed []string
		)
		warmer := cache.NewWarmer([]string{"t1", "t2", "t3"}, func(ctx context.Context, tenantID string) error {
			mu.Lock()
			warmed = append(warmed, tenantID)
			mu.Unlock()
			return nil
		})

		warmer.Start(context.Background())
		warmer.Stop()

		assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, warmed)
	})

	t.Run("OneFailureDoesNotStopTheRest", func(t *testing.T) {
		var (
			mu     sync.Mutex
			warmed []string
		)
		warmer := cache.NewWarmer([]string{"t1", "t2", "t3"}, func(ctx context.Context, tenantID string) error {
			if tenantID == "t2" {
				return assert.AnError
			}
			mu.Lock()
			warmed = append(warmed, tenantID)
			mu.Unlock()
			return nil
		})

		warmer.Start(context.Background())
		warmer.Stop()

		assert.ElementsMatch(t, []string{"t1", "t3"}, warmed)
	})

	t.Run("StartDoesNotBlock", func(t *testing.T) {
		release := make(chan struct{})
		warmer := cache.NewWarmer([]string{"t1"}, func(ctx context.Context, tenantID string) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		})

		start := time.Now()
		warmer.Start(context.Background())
		assert.Less(t, time.Since(start), 100*time.Millisecond)

		close(release)
		warmer.Stop()
	})

	t.Run("StopWithoutStart_ReturnsImmediately", func(t *testing.T) {
		warmer := cache.NewWarmer([]string{"t1"}, func(ctx context.Context, tenantID string) error {
			return nil
		})

		stopped := make(chan struct{})
		go func() {
			warmer.Stop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("Stop blocked with no prior Start")
		}
	})
}

// api/cache/l1_test.go
package cache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veridian-id/authz/api/cache"
)

func TestL1Cache(t *testing.T) {
	t.Run("SetGetInvalidate", func(t *testing.T) {
		l1 := cache.NewL1Cache(10, time.Minute)

		l1.Set("t:tenant-a:roles", []byte("payload"))
		value, ok := l1.Get("t:tenant-a:roles")
		assert.True(t, ok)
		assert.Equal(t, []byte("payload"), value)

		l1.Invalidate("t:tenant-a:roles")
		_, ok = l1.Get("t:tenant-a:roles")
		assert.False(t, ok)
	})

	t.Run("CapacityIsBounded", func(t *testing.T) {
		l1 := cache.NewL1Cache(10, time.Minute)

		for i := 0; i < 100; i++ {
			l1.Set(fmt.Sprintf("t:tenant-a:key-%d", i), []byte("v"))
		}
		assert.LessOrEqual(t, l1.Len(), 10)
	})

	t.Run("EntriesExpire", func(t *testing.T) {
		l1 := cache.NewL1Cache(10, 50*time.Millisecond)

		l1.Set("t:tenant-a:roles", []byte("payload"))
		time.Sleep(150 * time.Millisecond)

		_, ok := l1.Get("t:tenant-a:roles")
		assert.False(t, ok)
	})
}

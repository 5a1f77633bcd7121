// api/cache/bloom.go
package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// ExistenceFilter is a fail-open pre-check in front of the distributed cache.
// A false answer is a hard guarantee the key was never stored through this
// process; a true answer means "proceed to check further" with a bounded
// false-positive rate. It is an optimization against cache penetration,
// never a correctness boundary: disabled or nil, every lookup proceeds.
type ExistenceFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewExistenceFilter sizes the underlying bloom filter from the expected
// element count and target false-positive rate.
func NewExistenceFilter(expectedElements uint, falsePositiveRate float64) *ExistenceFilter {
	return &ExistenceFilter{
		filter: bloom.NewWithEstimates(expectedElements, falsePositiveRate),
	}
}

// Add records that key exists. Safe for concurrent use.
func (f *ExistenceFilter) Add(key string) {
	if f == nil {
		return
	}
	f.mu.Lock()
	f.filter.AddString(key)
	f.mu.Unlock()
}

// MightExist reports whether key could have been added. A nil filter always
// answers true (fail-open).
func (f *ExistenceFilter) MightExist(key string) bool {
	if f == nil {
		return true
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(key)
}

// api/errors/cache_errors.go
package errors

import "errors"

var (
	// ErrBackendUnavailable marks a transient L2 or backing-store failure.
	// It is handled at the cache orchestration boundary and never reaches
	// decision-engine callers.
	ErrBackendUnavailable = errors.New("cache backend unavailable")

	ErrCacheMiss         = errors.New("cache miss")
	ErrLoadTimeout       = errors.New("backing load timed out")
	ErrInvalidCacheEntry = errors.New("invalid cache entry")
)

// api/cache/jitter.go
package cache

import (
	"fmt"
	"math/rand"
	"time"
)

// Jitter spreads cache entry lifetimes uniformly inside
// [nominal-half, nominal+half] so entries created together do not expire
// together and stampede the backing store.
type Jitter struct {
	half time.Duration
}

// NewJitter takes the full jitter range; half of it is applied on each side
// of the nominal TTL.
func NewJitter(jitterRange time.Duration) (*Jitter, error) {
	if jitterRange < 0 {
		return nil, fmt.Errorf("jitter range must not be negative, got %s", jitterRange)
	}
	return &Jitter{half: jitterRange / 2}, nil
}

// Half reports the maximum deviation applied on either side of a nominal TTL.
func (j *Jitter) Half() time.Duration {
	return j.half
}

// EffectiveTTL returns nominal + uniform(-half, +half), never below one
// second. The result is computed once per real load, not once per caller;
// the multi-layer cache calls this only inside the singleflight section.
func (j *Jitter) EffectiveTTL(nominal time.Duration) time.Duration {
	if j.half == 0 {
		return nominal
	}
	offset := time.Duration(rand.Int63n(int64(2*j.half)+1)) - j.half
	ttl := nominal + offset
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// api/cache/entry.go
package cache

import (
	"fmt"
	"time"
)

// Entry is the envelope stored in the distributed cache. JitteredTTL records
// the effective lifetime chosen at store time so staleness stays auditable.
type Entry struct {
	Value       []byte        `json:"value"`
	StoredAt    time.Time     `json:"stored_at"`
	NominalTTL  time.Duration `json:"nominal_ttl"`
	JitteredTTL time.Duration `json:"jittered_ttl"`
}

// TenantKey namespaces a raw cache key by tenant. Every key that reaches L1,
// L2 or the singleflight group goes through this, which makes cross-tenant
// collisions structurally impossible.
func TenantKey(tenantID, key string) string {
	return fmt.Sprintf("t:%s:%s", tenantID, key)
}

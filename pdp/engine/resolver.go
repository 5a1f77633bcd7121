// api/pdp/engine/resolver.go
package engine

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// RoleResolver answers RBAC membership questions from cached role and
// permission snapshots. Snapshot unavailability resolves to "no permission";
// the caller's default deny covers the degraded case.
type RoleResolver struct {
	snapshots *SnapshotStore
}

func NewRoleResolver(snapshots *SnapshotStore) *RoleResolver {
	return &RoleResolver{snapshots: snapshots}
}

// HasPermission resolves the user's role set, unions the permission sets of
// those roles and tests membership of permissionCode. The per-role permission
// lookups run concurrently; each is an independent cache read.
func (rr *RoleResolver) HasPermission(ctx context.Context, tenantID, userID, permissionCode string) bool {
	roles, ok := rr.snapshots.RolesForUser(ctx, tenantID, userID)
	if !ok || len(roles) == 0 {
		return false
	}

	var (
		mu    sync.Mutex
		found bool
	)

	p := pool.New().WithContext(ctx)
	for _, role := range roles {
		roleID := role.ID
		p.Go(func(ctx context.Context) error {
			permissions, ok := rr.snapshots.PermissionsForRole(ctx, tenantID, roleID)
			if !ok {
				return nil
			}
			for _, permission := range permissions {
				if permission.Code == permissionCode {
					mu.Lock()
					found = true
					mu.Unlock()
					return nil
				}
			}
			return nil
		})
	}
	_ = p.Wait()

	return found
}

// CheckPermissions evaluates every code concurrently. Each permission test is
// independent, so running them in parallel removes the O(n) latency
// multiplier a sequential loop would pay on cache misses.
func (rr *RoleResolver) CheckPermissions(ctx context.Context, tenantID, userID string, permissionCodes []string) map[string]bool {
	results := make([]bool, len(permissionCodes))

	p := pool.New().WithContext(ctx)
	for i, code := range permissionCodes {
		i, code := i, code
		p.Go(func(ctx context.Context) error {
			results[i] = rr.HasPermission(ctx, tenantID, userID, code)
			return nil
		})
	}
	_ = p.Wait()

	out := make(map[string]bool, len(permissionCodes))
	for i, code := range permissionCodes {
		out[code] = results[i]
	}
	return out
}

// api/pdp/engine/snapshots.go
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/veridian-id/authz/api/cache"
	logger "github.com/veridian-id/authz/api/logging"
	"github.com/veridian-id/authz/api/model"
	"github.com/veridian-id/authz/api/repository"
)

// SnapshotStore serves role, permission and policy snapshots through the
// multi-layer cache. Every store failure collapses to an absent snapshot;
// callers never see raw I/O errors, only "no data", which the engine treats
// as grounds for a default deny. An empty snapshot (tenant with no rows) is
// legitimate data and is cached like any other value.
type SnapshotStore struct {
	cache     *cache.MultiLayer
	roles     repository.RoleRepository
	policies  repository.PolicyRepository
	roleTTL   time.Duration
	policyTTL time.Duration
}

func NewSnapshotStore(
	c *cache.MultiLayer,
	roles repository.RoleRepository,
	policies repository.PolicyRepository,
	roleTTL, policyTTL time.Duration,
) *SnapshotStore {
	return &SnapshotStore{
		cache:     c,
		roles:     roles,
		policies:  policies,
		roleTTL:   roleTTL,
		policyTTL: policyTTL,
	}
}

type policySnapshot struct {
	Policies []*model.Policy `json:"policies"`
}

type roleSnapshot struct {
	Roles []*model.Role `json:"roles"`
}

type permissionSnapshot struct {
	Permissions []*model.Permission `json:"permissions"`
}

// PolicySet returns the tenant's cached policy set. The bool reports whether
// a snapshot was available from any layer or the backing store.
func (s *SnapshotStore) PolicySet(ctx context.Context, tenantID string) ([]*model.Policy, bool) {
	data, err := s.cache.GetOrLoad(ctx, tenantID, "policies", s.policyTTL, func(loadCtx context.Context) ([]byte, error) {
		policies, err := s.policies.ListPolicies(loadCtx, tenantID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(policySnapshot{Policies: policies})
	})
	if err != nil {
		logger.Warn("Policy snapshot unavailable",
			zap.String("tenantID", tenantID),
			zap.Error(err))
		return nil, false
	}

	var snap policySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Error("Corrupt policy snapshot in cache",
			zap.String("tenantID", tenantID),
			zap.Error(err))
		return nil, false
	}
	return snap.Policies, true
}

// RolesForUser returns the user's cached role set within the tenant.
func (s *SnapshotStore) RolesForUser(ctx context.Context, tenantID, userID string) ([]*model.Role, bool) {
	key := fmt.Sprintf("user:%s:roles", userID)
	data, err := s.cache.GetOrLoad(ctx, tenantID, key, s.roleTTL, func(loadCtx context.Context) ([]byte, error) {
		roles, err := s.roles.ListRolesForUser(loadCtx, tenantID, userID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(roleSnapshot{Roles: roles})
	})
	if err != nil {
		logger.Warn("Role snapshot unavailable",
			zap.String("tenantID", tenantID),
			zap.String("userID", userID),
			zap.Error(err))
		return nil, false
	}

	var snap roleSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Error("Corrupt role snapshot in cache",
			zap.String("tenantID", tenantID),
			zap.Error(err))
		return nil, false
	}
	return snap.Roles, true
}

// PermissionsForRole returns the role's cached permission set.
func (s *SnapshotStore) PermissionsForRole(ctx context.Context, tenantID, roleID string) ([]*model.Permission, bool) {
	key := fmt.Sprintf("role:%s:permissions", roleID)
	data, err := s.cache.GetOrLoad(ctx, tenantID, key, s.roleTTL, func(loadCtx context.Context) ([]byte, error) {
		permissions, err := s.roles.ListPermissionsForRole(loadCtx, tenantID, roleID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(permissionSnapshot{Permissions: permissions})
	})
	if err != nil {
		logger.Warn("Permission snapshot unavailable",
			zap.String("tenantID", tenantID),
			zap.String("roleID", roleID),
			zap.Error(err))
		return nil, false
	}

	var snap permissionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Error("Corrupt permission snapshot in cache",
			zap.String("tenantID", tenantID),
			zap.Error(err))
		return nil, false
	}
	return snap.Permissions, true
}

// Warmup pre-loads the tenant's policy set through the normal load path so
// the first requests after startup do not pay the backing-store latency.
func (s *SnapshotStore) Warmup(ctx context.Context, tenantID string) error {
	if _, ok := s.PolicySet(ctx, tenantID); !ok {
		return fmt.Errorf("failed to warm policy set for tenant %s", tenantID)
	}
	return nil
}

// Invalidate drops the tenant's policy snapshot. Administrative mutation
// paths call this when TTL freshness is not enough.
func (s *SnapshotStore) Invalidate(ctx context.Context, tenantID string) {
	s.cache.Invalidate(ctx, tenantID, "policies")
}

// api/pdp/engine/resolver_test.go
package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/veridian-id/authz/api/cache"
	"github.com/veridian-id/authz/api/model"
	"github.com/veridian-id/authz/api/pdp/engine"
	"github.com/veridian-id/authz/api/test/mock"
)

func newTestResolver(t *testing.T, roleRepo *mock.MockRoleRepository) *engine.RoleResolver {
	t.Helper()
	c, err := cache.NewMultiLayer(mock.NewMemoryBackend(), cache.Options{
		L1MaxCapacity:         100,
		L1TTL:                 time.Minute,
		JitterRange:           0,
		LoadTimeout:           500 * time.Millisecond,
		L2FallbackEnabled:     true,
		BloomFilterEnabled:    true,
		BloomExpectedElements: 1000,
		BloomFalsePositives:   0.01,
	}, nil)
	require.NoError(t, err)

	snapshots := engine.NewSnapshotStore(c, roleRepo, new(mock.MockPolicyRepository), 5*time.Minute, 5*time.Minute)
	return engine.NewRoleResolver(snapshots)
}

func TestRoleResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("HasPermission_UnionsRolePermissions", func(t *testing.T) {
		roleRepo := new(mock.MockRoleRepository)
		roleRepo.On("ListRolesForUser", testify_mock.Anything, "t1", "u1").Return([]*model.Role{
			{ID: "r-viewer", TenantID: "t1", Name: "viewer"},
			{ID: "r-editor", TenantID: "t1", Name: "editor"},
		}, nil)
		roleRepo.On("ListPermissionsForRole", testify_mock.Anything, "t1", "r-viewer").Return([]*model.Permission{
			{ID: "p1", Code: "doc:read"},
		}, nil)
		roleRepo.On("ListPermissionsForRole", testify_mock.Anything, "t1", "r-editor").Return([]*model.Permission{
			{ID: "p2", Code: "doc:write"},
		}, nil)

		resolver := newTestResolver(t, roleRepo)

		assert.True(t, resolver.HasPermission(ctx, "t1", "u1", "doc:read"))
		assert.True(t, resolver.HasPermission(ctx, "t1", "u1", "doc:write"))
		assert.False(t, resolver.HasPermission(ctx, "t1", "u1", "doc:delete"))
	})

	t.Run("HasPermission_NoRoles", func(t *testing.T) {
		roleRepo := new(mock.MockRoleRepository)
		roleRepo.On("ListRolesForUser", testify_mock.Anything, "t1", "nobody").Return([]*model.Role{}, nil)

		resolver := newTestResolver(t, roleRepo)

		assert.False(t, resolver.HasPermission(ctx, "t1", "nobody", "doc:read"))
	})

	t.Run("HasPermission_RepositoryDown", func(t *testing.T) {
		roleRepo := new(mock.MockRoleRepository)
		roleRepo.On("ListRolesForUser", testify_mock.Anything, "t1", "u1").Return(nil, assert.AnError)

		resolver := newTestResolver(t, roleRepo)

		assert.False(t, resolver.HasPermission(ctx, "t1", "u1", "doc:read"))
	})

	t.Run("CheckPermissions_EvaluatesAllCodes", func(t *testing.T) {
		roleRepo := new(mock.MockRoleRepository)
		roleRepo.On("ListRolesForUser", testify_mock.Anything, "t1", "u1").Return([]*model.Role{
			{ID: "r-viewer", TenantID: "t1", Name: "viewer"},
		}, nil)
		roleRepo.On("ListPermissionsForRole", testify_mock.Anything, "t1", "r-viewer").Return([]*model.Permission{
			{ID: "p1", Code: "doc:read"},
			{ID: "p2", Code: "doc:list"},
		}, nil)

		resolver := newTestResolver(t, roleRepo)

		results := resolver.CheckPermissions(ctx, "t1", "u1", []string{"doc:read", "doc:list", "doc:write"})
		assert.Equal(t, map[string]bool{
			"doc:read":  true,
			"doc:list":  true,
			"doc:write": false,
		}, results)

		// The role snapshot is cached; the repository is consulted once.
		assert.Equal(t, 1, countCalls(&roleRepo.Mock, "ListRolesForUser"))
	})
}

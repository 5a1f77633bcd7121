// api/repository/repository.go
package repository

import (
	"context"

	"github.com/veridian-id/authz/api/model"
)

// RoleRepository reads role and permission data from the backing store. A
// tenant with no matching rows yields an empty slice and a nil error; absence
// of data is not an error.
type RoleRepository interface {
	ListRolesForUser(ctx context.Context, tenantID, userID string) ([]*model.Role, error)
	ListPermissionsForRole(ctx context.Context, tenantID, roleID string) ([]*model.Permission, error)
}

// PolicyRepository reads the ABAC policy set of a tenant.
type PolicyRepository interface {
	ListPolicies(ctx context.Context, tenantID string) ([]*model.Policy, error)
}

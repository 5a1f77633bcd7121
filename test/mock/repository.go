// test/mock/repository.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/veridian-id/authz/api/model"
)

// MockRoleRepository is a mock implementation of repository.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) ListRolesForUser(ctx context.Context, tenantID, userID string) ([]*model.Role, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Role), args.Error(1)
}

func (m *MockRoleRepository) ListPermissionsForRole(ctx context.Context, tenantID, roleID string) ([]*model.Permission, error) {
	args := m.Called(ctx, tenantID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Permission), args.Error(1)
}

// MockPolicyRepository is a mock implementation of repository.PolicyRepository
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) ListPolicies(ctx context.Context, tenantID string) ([]*model.Policy, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Policy), args.Error(1)
}

// api/repository/neo4j.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	authz_errors "github.com/veridian-id/authz/api/errors"
	logger "github.com/veridian-id/authz/api/logging"
	"github.com/veridian-id/authz/api/model"
)

const (
	labelUser       = "User"
	labelRole       = "Role"
	labelPermission = "Permission"
	labelPolicy     = "Policy"
	relHasRole      = "HAS_ROLE"
	relGrants       = "GRANTS"
)

// Neo4jRoleRepository reads roles and permissions from the graph store.
type Neo4jRoleRepository struct {
	Driver neo4j.Driver
}

func NewNeo4jRoleRepository(driver neo4j.Driver) *Neo4jRoleRepository {
	return &Neo4jRoleRepository{Driver: driver}
}

func (r *Neo4jRoleRepository) ListRolesForUser(ctx context.Context, tenantID, userID string) ([]*model.Role, error) {
	start := time.Now()
	session := r.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + labelUser + ` {id: $userID, tenantID: $tenantID})
              -[:` + relHasRole + `]->(r:` + labelRole + ` {tenantID: $tenantID})
        RETURN r
        ORDER BY r.name
        `

		params := map[string]interface{}{
			"tenantID": tenantID,
			"userID":   userID,
		}

		result, err := tx.Run(query, params)
		if err != nil {
			return nil, err
		}

		var roles []*model.Role
		for result.Next() {
			record := result.Record()
			roleNode := record.Values[0].(neo4j.Node)
			role, err := mapNodeToRole(roleNode)
			if err != nil {
				return nil, err
			}
			roles = append(roles, role)
		}

		return roles, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to list roles for user",
			zap.String("tenantID", tenantID),
			zap.String("userID", userID),
			zap.Error(err),
			zap.Duration("duration", duration))
		return nil, fmt.Errorf("%w: failed to list roles for user: %v", authz_errors.ErrDatabaseOperation, err)
	}

	roles := result.([]*model.Role)
	logger.Debug("Listed roles for user",
		zap.String("tenantID", tenantID),
		zap.String("userID", userID),
		zap.Int("count", len(roles)),
		zap.Duration("duration", duration))

	return roles, nil
}

func (r *Neo4jRoleRepository) ListPermissionsForRole(ctx context.Context, tenantID, roleID string) ([]*model.Permission, error) {
	session := r.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (r:` + labelRole + ` {id: $roleID, tenantID: $tenantID})
              -[:` + relGrants + `]->(p:` + labelPermission + `)
        RETURN p
        ORDER BY p.code
        `

		params := map[string]interface{}{
			"tenantID": tenantID,
			"roleID":   roleID,
		}

		result, err := tx.Run(query, params)
		if err != nil {
			return nil, err
		}

		var permissions []*model.Permission
		for result.Next() {
			record := result.Record()
			permNode := record.Values[0].(neo4j.Node)
			perm, err := mapNodeToPermission(permNode)
			if err != nil {
				return nil, err
			}
			permissions = append(permissions, perm)
		}

		return permissions, nil
	})

	if err != nil {
		logger.Error("Failed to list permissions for role",
			zap.String("tenantID", tenantID),
			zap.String("roleID", roleID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: failed to list permissions for role: %v", authz_errors.ErrDatabaseOperation, err)
	}

	return result.([]*model.Permission), nil
}

// Neo4jPolicyRepository reads a tenant's ABAC policy set from the graph store.
type Neo4jPolicyRepository struct {
	Driver neo4j.Driver
}

func NewNeo4jPolicyRepository(driver neo4j.Driver) *Neo4jPolicyRepository {
	return &Neo4jPolicyRepository{Driver: driver}
}

func (r *Neo4jPolicyRepository) ListPolicies(ctx context.Context, tenantID string) ([]*model.Policy, error) {
	start := time.Now()
	session := r.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:` + labelPolicy + ` {tenantID: $tenantID})
        RETURN p
        `

		params := map[string]interface{}{
			"tenantID": tenantID,
		}

		result, err := tx.Run(query, params)
		if err != nil {
			return nil, err
		}

		var policies []*model.Policy
		for result.Next() {
			record := result.Record()
			policyNode := record.Values[0].(neo4j.Node)
			policy, err := mapNodeToPolicy(policyNode)
			if err != nil {
				return nil, err
			}
			policies = append(policies, policy)
		}

		return policies, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to list policies",
			zap.String("tenantID", tenantID),
			zap.Error(err),
			zap.Duration("duration", duration))
		return nil, fmt.Errorf("%w: failed to list policies: %v", authz_errors.ErrDatabaseOperation, err)
	}

	policies := result.([]*model.Policy)
	logger.Debug("Listed policies",
		zap.String("tenantID", tenantID),
		zap.Int("count", len(policies)),
		zap.Duration("duration", duration))

	return policies, nil
}

// Helper functions to map Neo4j nodes to model structs

func mapNodeToRole(node neo4j.Node) (*model.Role, error) {
	props := node.Props
	role := &model.Role{}

	if id, ok := props["id"].(string); ok {
		role.ID = id
	} else {
		return nil, fmt.Errorf("failed to assert type for role ID: %v", props["id"])
	}

	if tenantID, ok := props["tenantID"].(string); ok {
		role.TenantID = tenantID
	} else {
		return nil, fmt.Errorf("failed to assert type for role tenantID: %v", props["tenantID"])
	}

	if name, ok := props["name"].(string); ok {
		role.Name = name
	} else {
		return nil, fmt.Errorf("failed to assert type for role name: %v", props["name"])
	}

	if permissionIDsJSON, ok := props["permissionIDs"].(string); ok {
		if err := json.Unmarshal([]byte(permissionIDsJSON), &role.PermissionIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal role permission IDs: %w", err)
		}
	}

	return role, nil
}

func mapNodeToPermission(node neo4j.Node) (*model.Permission, error) {
	props := node.Props
	perm := &model.Permission{}

	if id, ok := props["id"].(string); ok {
		perm.ID = id
	} else {
		return nil, fmt.Errorf("failed to assert type for permission ID: %v", props["id"])
	}

	if code, ok := props["code"].(string); ok {
		perm.Code = code
	} else {
		return nil, fmt.Errorf("failed to assert type for permission code: %v", props["code"])
	}

	if description, ok := props["description"].(string); ok {
		perm.Description = description
	}

	return perm, nil
}

func mapNodeToPolicy(node neo4j.Node) (*model.Policy, error) {
	props := node.Props
	policy := &model.Policy{}

	if id, ok := props["id"].(string); ok {
		policy.ID = id
	} else {
		return nil, fmt.Errorf("failed to assert type for policy ID: %v", props["id"])
	}

	if tenantID, ok := props["tenantID"].(string); ok {
		policy.TenantID = tenantID
	} else {
		return nil, fmt.Errorf("failed to assert type for policy tenantID: %v", props["tenantID"])
	}

	if effect, ok := props["effect"].(string); ok {
		if effect == model.EffectAllow || effect == model.EffectDeny {
			policy.Effect = effect
		} else {
			return nil, fmt.Errorf("invalid policy effect: %v", effect)
		}
	} else {
		return nil, fmt.Errorf("failed to assert type for policy effect: %v", props["effect"])
	}

	if subjectPattern, ok := props["subjectPattern"].(string); ok {
		policy.SubjectPattern = subjectPattern
	} else {
		return nil, fmt.Errorf("failed to assert type for policy subjectPattern: %v", props["subjectPattern"])
	}

	if resourcePattern, ok := props["resourcePattern"].(string); ok {
		policy.ResourcePattern = resourcePattern
	} else {
		return nil, fmt.Errorf("failed to assert type for policy resourcePattern: %v", props["resourcePattern"])
	}

	if actionPattern, ok := props["actionPattern"].(string); ok {
		policy.ActionPattern = actionPattern
	} else {
		return nil, fmt.Errorf("failed to assert type for policy actionPattern: %v", props["actionPattern"])
	}

	if conditionsJSON, ok := props["conditions"].(string); ok {
		if err := json.Unmarshal([]byte(conditionsJSON), &policy.Conditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal policy conditions: %w", err)
		}
	}

	return policy, nil
}

var (
	_ RoleRepository   = (*Neo4jRoleRepository)(nil)
	_ PolicyRepository = (*Neo4jPolicyRepository)(nil)
)

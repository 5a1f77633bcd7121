// api/model/authz.go
package model

// Permission is a named capability, e.g. "order:read". Immutable once a role
// references it.
type Permission struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Role groups permissions within a tenant.
type Role struct {
	ID            string   `json:"id"`
	TenantID      string   `json:"tenant_id"`
	Name          string   `json:"name"`
	PermissionIDs []string `json:"permission_ids"`
}

// UserRoleAssignment links a user to a role inside one tenant.
type UserRoleAssignment struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	RoleID   string `json:"role_id"`
}

const (
	EffectAllow = "allow"
	EffectDeny  = "deny"
)

// Policy is an ABAC rule owned by a tenant. Patterns use ':'-separated
// segments where '*' matches a single segment and a trailing '*' matches the
// remainder, e.g. "doc:*".
type Policy struct {
	ID              string      `json:"id"`
	TenantID        string      `json:"tenant_id"`
	Effect          string      `json:"effect"` // "allow" or "deny"
	SubjectPattern  string      `json:"subject_pattern"`
	ResourcePattern string      `json:"resource_pattern"`
	ActionPattern   string      `json:"action_pattern"`
	Conditions      []Condition `json:"conditions,omitempty"`
}

// Condition is an attribute test evaluated against the request context.
type Condition struct {
	Attribute string      `json:"attribute"`
	Operator  string      `json:"operator"`
	Value     interface{} `json:"value"`
}

// api/model/request.go
package model

import "fmt"

// AuthorizationRequest asks whether a subject may perform an action on a
// resource under the given context. TenantID is mandatory on every request;
// there is no implicit default tenant.
type AuthorizationRequest struct {
	TenantID string                 `json:"tenant_id"`
	Subject  string                 `json:"subject"`
	Resource string                 `json:"resource"`
	Action   string                 `json:"action"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

// Validate rejects nil requests and requests missing any of the identifying
// fields.
func (r *AuthorizationRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("authorization request is nil")
	}
	if r.TenantID == "" {
		return fmt.Errorf("authorization request missing tenant_id")
	}
	if r.Subject == "" {
		return fmt.Errorf("authorization request missing subject")
	}
	if r.Resource == "" {
		return fmt.Errorf("authorization request missing resource")
	}
	if r.Action == "" {
		return fmt.Errorf("authorization request missing action")
	}
	return nil
}

// DecisionReason explains which stage produced a decision.
type DecisionReason string

const (
	ReasonPolicyMatch DecisionReason = "policy_match"
	ReasonRbacMatch   DecisionReason = "rbac_match"
	ReasonDefaultDeny DecisionReason = "default_deny"
)

// AuthorizationDecision is the engine's answer for one request. Decisions are
// computed per request and never persisted.
type AuthorizationDecision struct {
	Allowed         bool           `json:"allowed"`
	Reason          DecisionReason `json:"reason"`
	MatchedPolicyID string         `json:"matched_policy_id,omitempty"`
}

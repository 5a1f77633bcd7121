// api/pdp/engine/engine.go
package engine

import (
	"context"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	logger "github.com/veridian-id/authz/api/logging"
	"github.com/veridian-id/authz/api/model"
)

// Engine is the policy decision point. ABAC is always evaluated before RBAC:
// a matching deny policy must win before any role-based allow is considered.
// RBAC is consulted only when no policy matched at all. When the required
// data cannot be obtained from any layer, the engine fails closed and
// returns a default deny; availability problems never surface as errors.
type Engine struct {
	evaluator *PolicyEvaluator
	resolver  *RoleResolver
	snapshots *SnapshotStore
}

func NewEngine(snapshots *SnapshotStore) *Engine {
	return &Engine{
		evaluator: NewPolicyEvaluator(),
		resolver:  NewRoleResolver(snapshots),
		snapshots: snapshots,
	}
}

// Check answers whether the request's subject may perform the action on the
// resource. Callers always receive a decision with a reason code.
func (e *Engine) Check(ctx context.Context, request *model.AuthorizationRequest) *model.AuthorizationDecision {
	if err := request.Validate(); err != nil {
		logger.Warn("Rejecting malformed authorization request", zap.Error(err))
		return &model.AuthorizationDecision{Allowed: false, Reason: model.ReasonDefaultDeny}
	}

	policies, ok := e.snapshots.PolicySet(ctx, request.TenantID)
	if !ok {
		// Without the policy set a hidden deny could be missed, so the
		// only safe answer is no.
		logger.Warn("Policy data unavailable, failing closed",
			zap.String("tenantID", request.TenantID))
		return &model.AuthorizationDecision{Allowed: false, Reason: model.ReasonDefaultDeny}
	}

	outcome := e.evaluator.EvaluateAll(request, policies)
	switch outcome.Outcome {
	case OutcomeDeny:
		return &model.AuthorizationDecision{
			Allowed:         false,
			Reason:          model.ReasonPolicyMatch,
			MatchedPolicyID: outcome.MatchedPolicyID,
		}
	case OutcomeAllow:
		return &model.AuthorizationDecision{
			Allowed:         true,
			Reason:          model.ReasonPolicyMatch,
			MatchedPolicyID: outcome.MatchedPolicyID,
		}
	}

	if e.resolver.HasPermission(ctx, request.TenantID, request.Subject, permissionCode(request)) {
		return &model.AuthorizationDecision{Allowed: true, Reason: model.ReasonRbacMatch}
	}

	return &model.AuthorizationDecision{Allowed: false, Reason: model.ReasonDefaultDeny}
}

// CheckMany evaluates independent requests concurrently. Results preserve
// request order.
func (e *Engine) CheckMany(ctx context.Context, requests []*model.AuthorizationRequest) []*model.AuthorizationDecision {
	decisions := make([]*model.AuthorizationDecision, len(requests))

	p := pool.New().WithContext(ctx)
	for i, request := range requests {
		i, request := i, request
		p.Go(func(ctx context.Context) error {
			decisions[i] = e.Check(ctx, request)
			return nil
		})
	}
	_ = p.Wait()

	return decisions
}

// permissionCode derives the RBAC permission code for a request: the resource
// type (first resource segment) joined with the action, e.g. resource
// "doc:123" + action "read" -> "doc:read".
func permissionCode(request *model.AuthorizationRequest) string {
	resourceType := request.Resource
	if idx := strings.Index(resourceType, ":"); idx > 0 {
		resourceType = resourceType[:idx]
	}
	return resourceType + ":" + request.Action
}

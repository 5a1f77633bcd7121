// api/pdp/engine/evaluator.go
package engine

import (
	"strings"

	"go.uber.org/zap"

	logger "github.com/veridian-id/authz/api/logging"
	"github.com/veridian-id/authz/api/model"
)

// Outcome is the result of evaluating a tenant's policy set against one
// request.
type Outcome int

const (
	// OutcomeNotApplicable means no policy matched; the caller falls through
	// to RBAC.
	OutcomeNotApplicable Outcome = iota
	OutcomeAllow
	OutcomeDeny
)

// PolicyOutcome carries the outcome plus the policy that produced it.
type PolicyOutcome struct {
	Outcome         Outcome
	MatchedPolicyID string
}

// PolicyEvaluator matches ABAC policies against authorization requests.
// Deny always wins: a single matching deny policy decides the outcome no
// matter how many allow policies also match and no matter their order.
type PolicyEvaluator struct{}

func NewPolicyEvaluator() *PolicyEvaluator {
	return &PolicyEvaluator{}
}

// EvaluateAll filters the policy set to those matching the request and
// combines them with deny-overrides precedence.
func (pe *PolicyEvaluator) EvaluateAll(request *model.AuthorizationRequest, policies []*model.Policy) PolicyOutcome {
	var firstAllow *model.Policy

	for _, policy := range policies {
		if !pe.matches(request, policy) {
			continue
		}
		if policy.Effect == model.EffectDeny {
			return PolicyOutcome{Outcome: OutcomeDeny, MatchedPolicyID: policy.ID}
		}
		if firstAllow == nil {
			firstAllow = policy
		}
	}

	if firstAllow != nil {
		return PolicyOutcome{Outcome: OutcomeAllow, MatchedPolicyID: firstAllow.ID}
	}
	return PolicyOutcome{Outcome: OutcomeNotApplicable}
}

func (pe *PolicyEvaluator) matches(request *model.AuthorizationRequest, policy *model.Policy) bool {
	if !matchPattern(policy.SubjectPattern, request.Subject) {
		return false
	}
	if !matchPattern(policy.ResourcePattern, request.Resource) {
		return false
	}
	if !matchPattern(policy.ActionPattern, request.Action) {
		return false
	}

	for _, condition := range policy.Conditions {
		if !pe.evaluateCondition(condition, request) {
			return false
		}
	}

	return true
}

// matchPattern tests a ':'-separated pattern against a value. A '*' segment
// matches exactly one segment; a trailing '*' matches the rest of the value.
func matchPattern(pattern, value string) bool {
	if pattern == "*" {
		return true
	}

	patternSegments := strings.Split(pattern, ":")
	valueSegments := strings.Split(value, ":")

	for i, segment := range patternSegments {
		if segment == "*" && i == len(patternSegments)-1 {
			// Trailing wildcard swallows the remainder, including none.
			return true
		}
		if i >= len(valueSegments) {
			return false
		}
		if segment == "*" {
			continue
		}
		if segment != valueSegments[i] {
			return false
		}
	}

	return len(patternSegments) == len(valueSegments)
}

func (pe *PolicyEvaluator) evaluateCondition(condition model.Condition, request *model.AuthorizationRequest) bool {
	actual, ok := request.Context[condition.Attribute]
	if !ok {
		return false
	}

	switch condition.Operator {
	case "eq":
		return equalValues(actual, condition.Value)
	case "ne":
		return !equalValues(actual, condition.Value)
	case "in":
		return containsValue(condition.Value, actual)
	case "gt", "lt", "ge", "le":
		return compareNumbers(condition.Operator, actual, condition.Value)
	case "prefix":
		actualStr, aok := actual.(string)
		prefixStr, pok := condition.Value.(string)
		return aok && pok && strings.HasPrefix(actualStr, prefixStr)
	default:
		logger.Warn("Unknown condition operator", zap.String("operator", condition.Operator))
		return false
	}
}

func equalValues(a, b interface{}) bool {
	// JSON numbers decode as float64; normalize ints before comparing.
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func containsValue(list, value interface{}) bool {
	items, ok := list.([]interface{})
	if !ok {
		return false
	}
	for _, item := range items {
		if equalValues(item, value) {
			return true
		}
	}
	return false
}

func compareNumbers(operator string, a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}
	switch operator {
	case "gt":
		return af > bf
	case "lt":
		return af < bf
	case "ge":
		return af >= bf
	case "le":
		return af <= bf
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

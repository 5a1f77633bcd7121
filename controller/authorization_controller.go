// api/controller/authorization_controller.go
package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	authz_errors "github.com/veridian-id/authz/api/errors"
	"github.com/veridian-id/authz/api/middleware"
	"github.com/veridian-id/authz/api/model"
	"github.com/veridian-id/authz/api/util"
)

// IDecisionEngine is the surface the controller needs from the PDP.
type IDecisionEngine interface {
	Check(ctx context.Context, request *model.AuthorizationRequest) *model.AuthorizationDecision
	CheckMany(ctx context.Context, requests []*model.AuthorizationRequest) []*model.AuthorizationDecision
}

type AuthorizationController struct {
	engine IDecisionEngine
}

func NewAuthorizationController(engine IDecisionEngine) *AuthorizationController {
	return &AuthorizationController{engine: engine}
}

// RegisterRoutes registers the decision endpoints
func (ac *AuthorizationController) RegisterRoutes(r *gin.RouterGroup) {
	check := r.Group("/check")
	{
		check.POST("", ac.Check)
		check.POST("/batch", ac.CheckBatch)
	}
}

// Check endpoint
func (ac *AuthorizationController) Check(c *gin.Context) {
	var request model.AuthorizationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid authorization request", authz_errors.ErrInvalidRequest)
		return
	}
	if request.TenantID == "" {
		util.RespondWithError(c, http.StatusBadRequest, "tenant_id is required", authz_errors.ErrMissingTenantID)
		return
	}
	c.Set(middleware.TenantIDKey, request.TenantID)

	decision := ac.engine.Check(c, &request)
	c.JSON(http.StatusOK, decision)
}

// CheckBatch endpoint
func (ac *AuthorizationController) CheckBatch(c *gin.Context) {
	// Bind into a value slice so a null element decodes to a zero request
	// instead of a nil pointer.
	var payload []model.AuthorizationRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid authorization requests", authz_errors.ErrInvalidRequest)
		return
	}

	requests := make([]*model.AuthorizationRequest, len(payload))
	for i := range payload {
		if payload[i].TenantID == "" {
			util.RespondWithError(c, http.StatusBadRequest, "tenant_id is required on every request", authz_errors.ErrMissingTenantID)
			return
		}
		requests[i] = &payload[i]
	}
	if tenantID := batchTenantID(requests); tenantID != "" {
		c.Set(middleware.TenantIDKey, tenantID)
	}

	decisions := ac.engine.CheckMany(c, requests)
	c.JSON(http.StatusOK, decisions)
}

// batchTenantID returns the batch's tenant when every request shares one,
// empty otherwise.
func batchTenantID(requests []*model.AuthorizationRequest) string {
	if len(requests) == 0 {
		return ""
	}
	tenantID := requests[0].TenantID
	for _, request := range requests[1:] {
		if request.TenantID != tenantID {
			return ""
		}
	}
	return tenantID
}

// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veridian-id/authz/api/controller"
	"github.com/veridian-id/authz/api/middleware"
)

func SetupRouter(
	authorizationController *controller.AuthorizationController,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	api := router.Group("/api/v1")

	authorizationController.RegisterRoutes(api)

	return router
}

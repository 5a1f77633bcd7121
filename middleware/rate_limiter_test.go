// api/middleware/rate_limiter_test.go
package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("TenantHeaderScopesTheWindow", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/api/v1/check", nil)
		c.Request.Header.Set("X-Tenant-ID", "tenant-a")

		assert.Equal(t, "tenant:tenant-a", rateLimitKey(c))
	})

	t.Run("FallsBackToClientIP", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/api/v1/check", nil)
		c.Request.RemoteAddr = "203.0.113.7:9000"

		assert.Equal(t, "ip:203.0.113.7", rateLimitKey(c))
	})
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CompanyGuard returns middleware that ensures company context is present.
// It relies on AuthMiddleware having already set the company_id.
func CompanyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextKeyCompanyID); !exists {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "company context required")
			return
		}
		c.Next()
	}
}

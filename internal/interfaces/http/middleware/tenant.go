package middleware

import (
	"net/http"

	"github.com/stockbook/backend/internal/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantContextKey is the gin context key holding the resolved tenant ID
const TenantContextKey = "tenant_id"

// TenantHeader is the request header carrying the tenant ID
const TenantHeader = "X-Tenant-ID"

// DefaultTenantID is used when no tenant header is present. This keeps
// single-tenant deployments and local development working without extra
// request plumbing.
var DefaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Tenant resolves the tenant ID from the X-Tenant-ID header and stores it
// in the gin context. Requests carrying a malformed tenant ID are rejected.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := DefaultTenantID
		if header := c.GetHeader(TenantHeader); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "ERR_BAD_REQUEST",
						"message": "Invalid tenant ID",
					},
				})
				return
			}
			tenantID = parsed
		}

		c.Set(TenantContextKey, tenantID)

		// Tag the request context so SQL trace logs carry the tenant.
		ctx, _ := logger.WithTenantID(c.Request.Context(), logger.FromContext(c.Request.Context()), tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTenantID returns the tenant ID resolved by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(TenantContextKey)
	if !exists {
		return uuid.Nil, false
	}
	tenantID, ok := value.(uuid.UUID)
	return tenantID, ok
}

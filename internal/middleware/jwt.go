package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/frenillazo/acainfo-portal-api/internal/service"
	"github.com/frenillazo/acainfo-portal-api/internal/upstream"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
	"github.com/frenillazo/acainfo-portal-api/pkg/middleware/requestid"
	"github.com/frenillazo/acainfo-portal-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid access token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// UpstreamContext copies the inbound request ID into the request context so
// academy API calls carry the same correlation ID end to end.
func UpstreamContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := requestid.Value(c); id != "" {
			c.Request = c.Request.WithContext(upstream.WithRequestID(c.Request.Context(), id))
		}
		c.Next()
	}
}

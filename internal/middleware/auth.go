package middleware

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/squid-app/squid-api/internal/model"
	"github.com/squid-app/squid-api/internal/service"
)

// IdentityKey is the gin context key holding the caller's *model.Identity
const IdentityKey = "identity"

// AuthMiddleware verifies the Google token in the Authorization header and
// injects the caller identity into context
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authService.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			appErr, typed := model.AsAppError(err)
			if !typed {
				log.WithError(err).Error("Authentication failed unexpectedly")
			}
			c.AbortWithStatusJSON(appErr.Code.HTTPStatus(), appErr.Response())
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// GetIdentity returns the identity stored by AuthMiddleware
func GetIdentity(c *gin.Context) *model.Identity {
	identity, _ := c.MustGet(IdentityKey).(*model.Identity)
	return identity
}

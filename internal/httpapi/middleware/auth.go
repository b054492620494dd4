package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aeroassist/backend/internal/identity"
)

// IdentityKey is where AuthRequired stores the verified identity in the
// gin context.
const IdentityKey = "identity"

func AuthRequired(verifier identity.Verifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		user, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, identity.ErrUnavailable) {
				log.Error("identity service unavailable", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					gin.H{"detail": "Authentication service not available"})
				return
			}
			log.Warn("token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"detail": "Could not validate credentials"})
			return
		}

		c.Set(IdentityKey, user)
		c.Next()
	}
}

// IdentityFromContext returns the identity set by AuthRequired.
func IdentityFromContext(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}

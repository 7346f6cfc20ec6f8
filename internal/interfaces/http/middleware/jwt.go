// Package middleware holds the gin middleware for the dashboard API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/auth"
	"github.com/datascientist-hue/live-dashboard/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys and header names.
const (
	ClaimsKey     = "session_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTAuth validates the bearer token, rejects revoked sessions and stores
// the claims in the request context.
func JWTAuth(jwtService *auth.JWTService, revoker auth.TokenRevoker, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, "Missing or malformed authorization header")
			return
		}
		tokenString := strings.TrimPrefix(header, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, "Missing token")
			return
		}

		claims, err := jwtService.Validate(tokenString)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Revocation store trouble must not take the dashboard down;
				// the token signature has already been verified.
				logger.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if revoked {
				abortUnauthorized(c, "Session has ended")
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireSuperAdmin allows only the SUPER_ADMIN role past.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.Role != identity.RoleSuperAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "This action requires the super admin role"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the session claims stored by JWTAuth, nil when absent.
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

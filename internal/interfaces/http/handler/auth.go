package handler

import (
	appidentity "github.com/datascientist-hue/live-dashboard/internal/application/identity"
	"github.com/datascientist-hue/live-dashboard/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *appidentity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input appidentity.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Username and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.NoContent(c)
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	h.Success(c, gin.H{
		"username":     claims.Username,
		"display_name": claims.DisplayName,
		"role":         claims.Role,
		"scope":        claims.Scope,
	})
}

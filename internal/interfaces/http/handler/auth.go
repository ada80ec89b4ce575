package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tutorlink/backend/internal/application/identity"
	"github.com/tutorlink/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account and returns a token pair
func (h *AuthHandler) Register(c *gin.Context) {
	var input identity.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Login authenticates a user
func (h *AuthHandler) Login(c *gin.Context) {
	var input identity.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input identity.RefreshTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout revokes the presented access token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// LogoutAll revokes every session of the caller
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

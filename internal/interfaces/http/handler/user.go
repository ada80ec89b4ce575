package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tutorlink/backend/internal/application/identity"
)

// UserHandler handles profile and directory HTTP requests
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe returns the caller's own account
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	info, err := h.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// UpdateMe updates the caller's profile
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input identity.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	info, err := h.userService.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// ChangePassword changes the caller's password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input identity.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, input); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// DeactivateMe deactivates the caller's account
func (h *UserHandler) DeactivateMe(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetProfile returns another user's public profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, profile)
}

// List returns the user directory
func (h *UserHandler) List(c *gin.Context) {
	var input identity.ListUsersInput
	if err := c.ShouldBindQuery(&input); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.userService.ListUsers(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

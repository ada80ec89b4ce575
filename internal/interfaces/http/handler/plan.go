package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tutorlink/backend/internal/application/tutoring"
)

// PlanHandler handles study plan HTTP requests
type PlanHandler struct {
	BaseHandler
	planService *tutoring.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planService *tutoring.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// Generate produces and stores a study plan for the caller
func (h *PlanHandler) Generate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input tutoring.GeneratePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.planService.Generate(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// ListMine returns the caller's study plans
func (h *PlanHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	views, err := h.planService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, views)
}

// Get returns one study plan
func (h *PlanHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	planID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	view, err := h.planService.Get(c.Request.Context(), userID, planID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

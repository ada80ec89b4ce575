package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tutorlink/backend/internal/application/tutoring"
)

// TaskHandler handles tutoring task HTTP requests
type TaskHandler struct {
	BaseHandler
	taskService *tutoring.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *tutoring.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// assignTaskRequest is the body for assigning a tutor
type assignTaskRequest struct {
	TutorID string `json:"tutor_id" binding:"required,uuid"`
}

// Post creates an open task for the caller
func (h *TaskHandler) Post(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input tutoring.PostTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.taskService.Post(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// List returns the open task board
func (h *TaskHandler) List(c *gin.Context) {
	var input tutoring.ListTasksInput
	if err := c.ShouldBindQuery(&input); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.taskService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListMine returns the caller's own tasks
func (h *TaskHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input tutoring.ListTasksInput
	if err := c.ShouldBindQuery(&input); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.taskService.ListMine(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one task
func (h *TaskHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	view, err := h.taskService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Assign assigns a tutor to the caller's task
func (h *TaskHandler) Assign(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	var req assignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.taskService.Assign(c.Request.Context(), userID, taskID, mustParseUUID(req.TutorID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Complete marks the caller's task completed
func (h *TaskHandler) Complete(c *gin.Context) {
	h.transition(c, h.taskService.Complete)
}

// Cancel cancels the caller's task
func (h *TaskHandler) Cancel(c *gin.Context) {
	h.transition(c, h.taskService.Cancel)
}

func (h *TaskHandler) transition(c *gin.Context, apply func(ctx context.Context, callerID, taskID uuid.UUID) (*tutoring.TaskView, error)) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	view, err := apply(c.Request.Context(), userID, taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

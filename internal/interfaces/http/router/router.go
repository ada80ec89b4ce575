package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tutorlink/backend/internal/interfaces/http/handler"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Conversation *handler.ConversationHandler
	Notification *handler.NotificationHandler
	Subject      *handler.SubjectHandler
	Task         *handler.TaskHandler
	Session      *handler.SessionHandler
	Review       *handler.ReviewHandler
	Plan         *handler.PlanHandler
	Health       *handler.HealthHandler
}

// Setup mounts all routes under /api/v1. requireAuth guards everything
// except registration, login, refresh, health, and public reference data.
func Setup(engine *gin.Engine, h Handlers, requireAuth gin.HandlerFunc) {
	api := engine.Group("/api/v1")

	api.GET("/health", h.Health.Health)
	api.GET("/ready", h.Health.Ready)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", requireAuth, h.Auth.Logout)
		auth.POST("/logout-all", requireAuth, h.Auth.LogoutAll)
	}

	subjects := api.Group("/subjects")
	{
		subjects.GET("", h.Subject.List)
		subjects.GET("/:slug", h.Subject.GetBySlug)
		subjects.POST("", requireAuth, h.Subject.Create)
	}

	authed := api.Group("")
	authed.Use(requireAuth)
	{
		users := authed.Group("/users")
		{
			users.GET("/me", h.User.GetMe)
			users.PATCH("/me", h.User.UpdateMe)
			users.POST("/me/password", h.User.ChangePassword)
			users.DELETE("/me", h.User.DeactivateMe)
			users.GET("/:id", h.User.GetProfile)
			users.GET("", h.User.List)
		}

		conversations := authed.Group("/conversations")
		{
			conversations.GET("", h.Conversation.List)
			conversations.POST("", h.Conversation.Start)
			conversations.GET("/:id", h.Conversation.Get)
			conversations.GET("/:id/messages", h.Conversation.GetMessages)
			conversations.POST("/:id/messages", h.Conversation.SendMessage)
			conversations.POST("/:id/read", h.Conversation.MarkRead)
		}

		authed.POST("/messages", h.Conversation.SendDirect)

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.POST("/:id/read", h.Notification.MarkRead)
			notifications.POST("/read-all", h.Notification.MarkAllRead)
		}

		tasks := authed.Group("/tasks")
		{
			tasks.POST("", h.Task.Post)
			tasks.GET("", h.Task.List)
			tasks.GET("/mine", h.Task.ListMine)
			tasks.GET("/:id", h.Task.Get)
			tasks.POST("/:id/assign", h.Task.Assign)
			tasks.POST("/:id/complete", h.Task.Complete)
			tasks.POST("/:id/cancel", h.Task.Cancel)
		}

		sessions := authed.Group("/sessions")
		{
			sessions.POST("", h.Session.Schedule)
			sessions.GET("", h.Session.ListMine)
			sessions.GET("/:id", h.Session.Get)
			sessions.POST("/:id/complete", h.Session.Complete)
			sessions.POST("/:id/cancel", h.Session.Cancel)
			sessions.GET("/:id/reviews", h.Session.ListReviews)
		}

		authed.POST("/reviews", h.Review.Create)

		plans := authed.Group("/plans")
		{
			plans.POST("", h.Plan.Generate)
			plans.GET("", h.Plan.ListMine)
			plans.GET("/:id", h.Plan.Get)
		}
	}
}

package handlers

import (
	"github.com/Marga-Ghale/projecthub-backend/internal/api/middleware"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
	"github.com/gin-gonic/gin"
)

// Routes mounts the API under api. protect authenticates the caller and
// throttle limits the public write endpoints.
func (h *Handlers) Routes(api *gin.RouterGroup, protect, throttle gin.HandlerFunc) {
	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", throttle, h.Auth.Register)
		auth.POST("/login", throttle, h.Auth.Login)
		auth.POST("/refresh", throttle, h.Auth.RefreshToken)
		auth.GET("/oidc/login", h.Auth.OIDCLogin)
		auth.GET("/oidc/callback", h.Auth.OIDCCallback)
	}
	api.POST("/contact", throttle, h.Contact.Submit)
	api.GET("/companies/active", h.Company.ListActive)

	// Protected routes
	p := api.Group("", protect)

	p.POST("/auth/logout", h.Auth.Logout)
	p.GET("/me", h.Auth.Me)
	p.GET("/me/trial-days", h.Company.TrialDaysLeft)

	projects := p.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.POST("", h.Project.Create)
		projects.GET("/:id", h.Project.Get)
		projects.PUT("/:id", h.Project.Update)
		projects.DELETE("/:id", h.Project.Delete)
		projects.POST("/:id/assign", h.Project.AssignTeam)
		projects.GET("/:id/history", h.Project.History)
	}
	p.GET("/history", h.Project.History)

	members := p.Group("/team-members")
	{
		members.GET("", h.TeamMember.List)
		members.POST("", h.TeamMember.Create)
		members.PUT("/:id", h.TeamMember.Update)
		members.POST("/:id/deactivate", h.TeamMember.Deactivate)
		members.DELETE("/:id", h.TeamMember.Delete)
	}

	issues := p.Group("/issues")
	{
		issues.GET("", h.Issue.List)
		issues.POST("", h.Issue.Create)
		issues.PUT("/:id", h.Issue.Update)
		issues.DELETE("/:id", h.Issue.Delete)
		issues.GET("/:id/comments", h.Issue.ListComments)
		issues.POST("/:id/comments", h.Issue.AddComment)
	}

	clients := p.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.PUT("/:id/status", h.Client.UpdateStatus)
		clients.DELETE("/:id", h.Client.Delete)
	}

	notifications := p.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.GET("/count", h.Notification.Count)
		notifications.PUT("/read-all", h.Notification.MarkAllRead)
		notifications.PUT("/:id/read", h.Notification.MarkRead)
		notifications.DELETE("/:id", h.Notification.Delete)
	}

	pricing := p.Group("/pricing-requests")
	{
		pricing.GET("", h.Pricing.List)
		pricing.POST("", h.Pricing.Submit)
		pricing.PUT("/:id/decision", middleware.RequireRole(types.RoleAdmin), h.Pricing.Decide)
	}

	p.PUT("/companies/:id", middleware.RequireRole(types.RoleAdmin, types.RoleCompany), h.Company.Update)

	admin := p.Group("/admin", middleware.RequireRole(types.RoleAdmin))
	{
		admin.GET("/users", h.User.List)
		admin.PUT("/users/:id/status", h.User.UpdateStatus)

		admin.GET("/companies", h.Company.List)
		admin.POST("/companies", h.Company.Create)
		admin.PUT("/companies/:id", h.Company.Update)
		admin.PUT("/companies/:id/status", h.Company.UpdateStatus)
		admin.PUT("/companies/:id/subscription", h.Company.UpdateSubscription)
		admin.POST("/companies/:id/renew", h.Company.Renew)
		admin.POST("/companies/sweep", h.Company.Sweep)
	}
}

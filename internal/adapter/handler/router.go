package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meetwise-team/meetwise/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *Meeting
	reviewHandler  *Review
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *Meeting, reviewHandler *Review) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
		reviewHandler:  reviewHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupMeetingRoutes(v1)
	rt.setupReviewRoutes(v1)
	rt.setupProjectRoutes(v1)
}

// setupMeetingRoutes configures meeting lifecycle routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.POST("", rt.meetingHandler.Create)
	meetings.GET("/:id", rt.meetingHandler.Get)
	meetings.DELETE("/:id", rt.meetingHandler.Delete)
	meetings.POST("/:id/process", rt.meetingHandler.Process)
}

// setupReviewRoutes configures change set review routes. Lock, edit and
// publish need an actor identity; reading the change set does not.
func (rt *Router) setupReviewRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.GET("/:id/changeset", rt.reviewHandler.GetChangeSet)
	meetings.POST("/:id/changeset/lock", rt.reviewHandler.AcquireLock, RequireActor)
	meetings.DELETE("/:id/changeset/lock", rt.reviewHandler.ReleaseLock, RequireActor)
	meetings.PUT("/:id/changeset/items", rt.reviewHandler.UpdateItems, RequireActor)
	meetings.POST("/:id/publish", rt.reviewHandler.Publish, RequireActor)
}

// setupProjectRoutes configures project scoped listing routes
func (rt *Router) setupProjectRoutes(g *echo.Group) {
	projects := g.Group("/projects")

	projects.GET("/:id/meetings", rt.meetingHandler.ListByProject)
	projects.GET("/:id/records", rt.reviewHandler.ListRecords)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}

package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/controllers"
	"github.com/HSouheill/hireboard_notifications/middleware"
)

// RegisterEventRoutes registers the business-event intake used by the
// application service. Callers authenticate with the shared API key or a
// service/admin token.
func RegisterEventRoutes(e *echo.Echo, deps Dependencies) {
	eventController := controllers.NewEventController(deps.Applicants, deps.Recruiters)

	events := e.Group("/api/internal/events",
		middleware.APIKeyAuth(deps.InternalAPIKey),
		middleware.JWTMiddleware(deps.JWTSecret, deps.Log),
		middleware.RequireUserType(middleware.RoleService, middleware.RoleAdmin),
	)
	events.POST("/application-created", eventController.ApplicationCreated)
	events.POST("/application-status-changed", eventController.ApplicationStatusChanged)
}

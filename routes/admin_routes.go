package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/controllers"
	"github.com/HSouheill/hireboard_notifications/middleware"
)

// RegisterAdminRoutes sets up all admin-related routes
func RegisterAdminRoutes(e *echo.Echo, deps Dependencies) {
	adminController := controllers.NewAdminController(deps.Applicants, deps.Recruiters)

	admin := e.Group("/api/admin", authenticated(deps, middleware.RoleAdmin)...)
	admin.PATCH("/notifications/unread-all", adminController.MarkAllUnread)
}

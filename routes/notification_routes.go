package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/hireboard_notifications/controllers"
	"github.com/HSouheill/hireboard_notifications/middleware"
	"github.com/HSouheill/hireboard_notifications/services"
)

// RegisterNotificationRoutes registers the applicant inbox.
func RegisterNotificationRoutes(e *echo.Echo, deps Dependencies) {
	group := e.Group("/api/notifications", authenticated(deps, middleware.RoleApplicant)...)
	registerInbox(group, deps, deps.Applicants)
}

// RegisterHRNotificationRoutes registers the recruiter inbox.
func RegisterHRNotificationRoutes(e *echo.Echo, deps Dependencies) {
	group := e.Group("/api/hr-notifications", authenticated(deps, middleware.RoleHR)...)
	registerInbox(group, deps, deps.Recruiters)
}

func registerInbox(group *echo.Group, deps Dependencies, inbox services.Inbox) {
	notificationController := controllers.NewNotificationController(inbox, deps.Paging)
	deviceController := controllers.NewDeviceController(deps.Registry)

	group.GET("", notificationController.ListNotifications)
	group.GET("/unread-count", notificationController.UnreadCount)
	group.GET("/sync-settings", controllers.NewSyncController(deps.Sync).Settings)
	group.PATCH("/read-all", notificationController.MarkAllAsRead)
	group.PATCH("/:id/read", notificationController.MarkAsRead)

	group.POST("/register-device", deviceController.RegisterDevice)
	group.DELETE("/register-device", deviceController.UnregisterDevice)

	if deps.Hub != nil {
		group.GET("/ws", controllers.NewWSController(deps.Hub).Connect)
	}
}

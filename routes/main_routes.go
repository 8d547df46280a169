package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/controllers"
	"github.com/HSouheill/hireboard_notifications/middleware"
	"github.com/HSouheill/hireboard_notifications/models"
	"github.com/HSouheill/hireboard_notifications/services"
	"github.com/HSouheill/hireboard_notifications/websocket"
)

// Dependencies is everything the route groups are built from.
type Dependencies struct {
	JWTSecret      string
	InternalAPIKey string

	Applicants *services.ApplicantService
	Recruiters *services.RecruiterService
	Registry   *services.TokenRegistry
	Hub        *websocket.Hub

	RateLimiter  *middleware.RateLimiter
	Paging       controllers.Paging
	Sync         models.SyncSettings
	HealthChecks map[string]controllers.HealthCheck
	Log          logrus.FieldLogger
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	health := controllers.NewHealthController(deps.HealthChecks)
	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", health.Health)

	RegisterNotificationRoutes(e, deps)
	RegisterHRNotificationRoutes(e, deps)
	RegisterEventRoutes(e, deps)
	RegisterAdminRoutes(e, deps)
}

// authenticated returns the middleware chain of a group reserved to roles.
func authenticated(deps Dependencies, roles ...string) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{
		middleware.JWTMiddleware(deps.JWTSecret, deps.Log),
		middleware.RequireUserType(roles...),
	}
	if deps.RateLimiter != nil {
		chain = append(chain, deps.RateLimiter.RateLimit())
	}
	return chain
}

package middleware

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/security"
)

// RequestLogger writes one structured access log line per request.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"method":    v.Method,
				"uri":       security.RedactURI(v.URI),
				"status":    v.Status,
				"latency":   v.Latency.String(),
				"remoteIp":  v.RemoteIP,
				"requestId": v.RequestID,
			}
			if p, ok := GetPrincipal(c); ok {
				fields["userId"] = p.ID
			}
			entry := log.WithFields(fields)
			if l, ok := log.(*logrus.Logger); ok && l.IsLevelEnabled(logrus.DebugLevel) {
				entry = entry.WithField("headers", security.RedactHeaders(c.Request().Header))
			}
			switch {
			case v.Error != nil || v.Status >= 500:
				entry.WithError(v.Error).Error("request failed")
			case v.Status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
}

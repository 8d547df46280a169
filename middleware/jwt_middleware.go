// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/models"
)

// User types carried in the userType claim.
const (
	RoleApplicant = "applicant"
	RoleHR        = "hr"
	RoleAdmin     = "admin"
	RoleService   = "service"
)

const principalKey = "principal"

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
	jwt.StandardClaims
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID    string
	Email string
	Role  string
}

// Audience maps the caller's role to the inbox it owns.
func (p Principal) Audience() (models.Audience, bool) {
	switch p.Role {
	case RoleApplicant:
		return models.AudienceApplicant, true
	case RoleHR:
		return models.AudienceRecruiter, true
	}
	return "", false
}

// JWTMiddleware validates HS256 bearer tokens, from the Authorization header
// or the token query parameter, and stores the Principal on the context.
// Requests already authenticated by APIKeyAuth pass through.
func JWTMiddleware(secret string, log logrus.FieldLogger) echo.MiddlewareFunc {
	if secret == "" {
		log.Warn("JWT secret is not configured, rejecting authenticated routes")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(echo.ErrUnauthorized.Code, "JWT configuration error")
			}
		}
	}

	return middleware.JWTWithConfig(middleware.JWTConfig{
		Skipper: func(c echo.Context) bool {
			_, ok := GetPrincipal(c)
			return ok
		},
		SigningKey:    []byte(secret),
		SigningMethod: middleware.AlgorithmHS256,
		Claims:        &JwtCustomClaims{},
		TokenLookup:   "header:" + echo.HeaderAuthorization + ",query:token",
		AuthScheme:    "Bearer",
		SuccessHandler: func(c echo.Context) {
			user := c.Get("user").(*jwt.Token)
			claims := user.Claims.(*JwtCustomClaims)
			c.Set(principalKey, Principal{ID: claims.UserID, Email: claims.Email, Role: claims.UserType})
		},
		ErrorHandler: func(err error) error {
			log.WithError(err).Debug("jwt rejected")
			return echo.NewHTTPError(echo.ErrUnauthorized.Code, "Please provide valid credentials")
		},
	})
}

// GenerateJWT signs an access token. A zero ttl issues a token without
// expiry.
func GenerateJWT(secret, userID, email, userType string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret is required")
	}
	now := time.Now()
	claims := &JwtCustomClaims{
		UserID:   userID,
		Email:    email,
		UserType: userType,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GetPrincipal returns the caller set by JWTMiddleware or APIKeyAuth.
func GetPrincipal(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok && p.ID != ""
}

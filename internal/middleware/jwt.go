// Package middleware provides reusable HTTP middleware: access-token
// verification, role enforcement and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/accesslab/employee-auth-api/internal/model"
	"github.com/accesslab/employee-auth-api/internal/token"
)

// Context keys set by VerifyAccess and read by RequireRole and handlers.
const (
	CtxUsername = "username"
	CtxRoles    = "roles"
)

// VerifyAccess returns an Echo middleware that validates the Bearer access
// token and injects the subject and role claims into the request context.
// Missing, malformed, tampered and expired tokens all produce 401: the
// client holds no usable credential and should (re)authenticate or refresh.
// Insufficient roles are a different failure and belong to RequireRole.
func VerifyAccess(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := codec.DecodeAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(CtxUsername, claims.Username)
			c.Set(CtxRoles, claims.Roles)
			return next(c)
		}
	}
}

// RolesFrom extracts the role set stored by VerifyAccess. The second return
// is false when the middleware did not run for this request.
func RolesFrom(c echo.Context) ([]model.Role, bool) {
	roles, ok := c.Get(CtxRoles).([]model.Role)
	return roles, ok
}

// UsernameFrom extracts the authenticated subject stored by VerifyAccess.
func UsernameFrom(c echo.Context) (string, bool) {
	name, ok := c.Get(CtxUsername).(string)
	return name, ok
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accesslab/employee-auth-api/internal/auth"
	"github.com/accesslab/employee-auth-api/internal/model"
)

// RequireRole returns a middleware enforcing that the authenticated subject
// carries at least one of the given role codes. Passing no roles admits any
// authenticated identity. It must run after VerifyAccess; a request that
// reaches it without claims is treated as unauthenticated, not forbidden.
//
// A 403 from this middleware means the credential is valid but insufficient:
// refreshing the token will not help the caller.
func RequireRole(required ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := RolesFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if err := auth.Authorize(roles, required...); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}

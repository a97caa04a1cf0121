package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accesslab/employee-auth-api/internal/model"
	"github.com/accesslab/employee-auth-api/internal/repository"
)

// Register handles POST /register: create a user with the default User role.
// Role escalation happens through user management, never through signup.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.User == "" || req.Pwd == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.User, req.Pwd, []model.Role{model.RoleUser}, h.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": fmt.Sprintf("New user %s created!", req.User)})
}

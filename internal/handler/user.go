package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/accesslab/employee-auth-api/internal/auth"
	"github.com/accesslab/employee-auth-api/internal/model"
)

// UserAdminStore is the persistence surface the admin user endpoints consume.
type UserAdminStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

// UserHandler serves the admin-only user management endpoints. Deleting a
// user also revokes every session the account holds, so outstanding refresh
// tokens become unusable immediately.
type UserHandler struct {
	Users UserAdminStore
	Auth  *auth.Service
}

func NewUserHandler(users UserAdminStore, svc *auth.Service) *UserHandler {
	return &UserHandler{Users: users, Auth: svc}
}

// userResp never carries the password hash.
type userResp struct {
	ID       uint64       `json:"id"`
	Username string       `json:"username"`
	Roles    []model.Role `json:"roles"`
}

func toUserResp(u model.User) userResp {
	return userResp{ID: u.ID, Username: u.Username, Roles: u.Roles}
}

// GetAll lists every user, or 204 when there are none.
func (h *UserHandler) GetAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	if len(users) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	out := make([]userResp, len(users))
	for i, u := range users {
		out[i] = toUserResp(u)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single user by path id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get user failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

type deleteUserReq struct {
	ID uint64 `json:"id"`
}

// Delete removes a user and clears their session set (cascade: every live
// refresh token for the account dies with it).
func (h *UserHandler) Delete(c echo.Context) error {
	var req deleteUserReq
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get user failed"})
	}

	deleted, err := h.Users.Delete(ctx, req.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	if !deleted {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.Auth.RevokeAll(ctx, u.Username); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke sessions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

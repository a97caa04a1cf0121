// Package handler implements the HTTP endpoints. Handlers translate between
// the wire format and the auth core; none of them hold security logic beyond
// mapping core errors to status codes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/accesslab/employee-auth-api/internal/auth"
	"github.com/accesslab/employee-auth-api/internal/model"
	"github.com/accesslab/employee-auth-api/internal/token"
)

const dbTimeout = 5 * time.Second

// UserCreator is the write side of the user store needed by registration.
type UserCreator interface {
	Create(ctx context.Context, username, password string, roles []model.Role, cost int) (uint64, error)
}

// AuthHandler bundles dependencies for the credential endpoints.
type AuthHandler struct {
	Auth       *auth.Service
	Users      UserCreator
	BcryptCost int
}

func NewAuthHandler(svc *auth.Service, users UserCreator, bcryptCost int) *AuthHandler {
	return &AuthHandler{Auth: svc, Users: users, BcryptCost: bcryptCost}
}

// ----- DTOs -----

// credentials is the login/register request body. The short field names are
// the wire contract inherited by existing clients.
type credentials struct {
	User string `json:"user"`
	Pwd  string `json:"pwd"`
}

type tokenResp struct {
	Roles       []model.Role `json:"roles"`
	AccessToken string       `json:"accessToken"`
}

// Login handles POST /auth: verify credentials, return the access token and
// role list in the body, and deliver the refresh token through the cookie
// channel.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	grant, err := h.Auth.Login(ctx, req.User, req.Pwd)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid username or password"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
	}

	cookieChannel{c}.Set(grant.RefreshToken, grant.RefreshExpires)
	return c.JSON(http.StatusOK, tokenResp{Roles: grant.Roles, AccessToken: grant.AccessToken})
}

// Refresh handles POST /refresh: rotate the refresh cookie and return a new
// access token. A missing cookie is 401 (nothing to present); everything
// else — bad signature, expiry, reuse, unknown subject — is a uniform 403 so
// probing reveals nothing.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ch := cookieChannel{c}
	raw, ok := ch.Read()
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing refresh cookie"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	grant, err := h.Auth.Refresh(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing refresh cookie"})
		case errors.Is(err, token.ErrInvalid),
			errors.Is(err, token.ErrExpired),
			errors.Is(err, auth.ErrUnknownSubject),
			errors.Is(err, auth.ErrReuseDetected):
			// The cookie is dead either way; drop it.
			ch.Clear()
			return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid refresh token"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
		}
	}

	ch.Set(grant.RefreshToken, grant.RefreshExpires)
	return c.JSON(http.StatusOK, tokenResp{Roles: grant.Roles, AccessToken: grant.AccessToken})
}

// Logout handles POST /logout: drop the presented session and clear the
// cookie. Always 204 — repeated or tokenless logouts are indistinguishable
// from a real one, so the endpoint leaks nothing about session validity.
func (h *AuthHandler) Logout(c echo.Context) error {
	ch := cookieChannel{c}
	raw, ok := ch.Read()
	if ok {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		if err := h.Auth.Logout(ctx, raw); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	}
	ch.Clear()
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// refreshCookieName is the cookie carrying the refresh token. The name is
// part of the public API contract with existing clients.
const refreshCookieName = "jwt"

// credentialChannel is the out-of-band transport for refresh tokens. The
// auth core never sees how tokens travel; handlers hand it a channel and the
// HTTP layer implements it as an HTTP-only cookie.
type credentialChannel interface {
	Set(token string, expires time.Time)
	Read() (string, bool)
	Clear()
}

// cookieChannel implements credentialChannel on top of the echo context.
type cookieChannel struct{ c echo.Context }

func (ch cookieChannel) Set(token string, expires time.Time) {
	ch.c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ch cookieChannel) Read() (string, bool) {
	ck, err := ch.c.Cookie(refreshCookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

func (ch cookieChannel) Clear() {
	ch.c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/accesslab/employee-auth-api/internal/handler"
	"github.com/accesslab/employee-auth-api/internal/middleware"
	"github.com/accesslab/employee-auth-api/internal/model"
	"github.com/accesslab/employee-auth-api/internal/token"
)

// Handlers collects everything Register needs to wire the route table.
// Limiter may be nil when rate limiting is disabled.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Employees *handler.EmployeeHandler
	Static    *handler.StaticHandler
	Codec     *token.Codec
	Limiter   echo.MiddlewareFunc
}

// Register wires the full route table:
//
//	public     /auth /register /refresh /logout /healthz and the static pages
//	bearer     /employees… (role requirements vary per operation)
//	admin      /users…
//
// The credential endpoints sit behind the rate limiter; everything under a
// bearer group runs VerifyAccess first, then any RequireRole gate.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)

	e.GET("/", h.Static.Index)
	e.GET("/index", h.Static.Index)
	e.GET("/index.html", h.Static.Index)
	e.RouteNotFound("/*", h.Static.NotFound)

	limited := h.Limiter
	if limited == nil {
		limited = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	e.POST("/auth", h.Auth.Login, limited)
	e.POST("/register", h.Auth.Register, limited)
	e.POST("/refresh", h.Auth.Refresh, limited)
	e.POST("/logout", h.Auth.Logout)

	verify := middleware.VerifyAccess(h.Codec)
	editors := middleware.RequireRole(model.RoleAdmin, model.RoleEditor)
	admins := middleware.RequireRole(model.RoleAdmin)

	emp := e.Group("/employees", verify)
	emp.GET("", h.Employees.GetAll)
	emp.GET("/", h.Employees.GetAll)
	emp.POST("", h.Employees.Create, editors)
	emp.POST("/", h.Employees.Create, editors)
	emp.PUT("", h.Employees.Update, editors)
	emp.PUT("/", h.Employees.Update, editors)
	emp.DELETE("", h.Employees.Delete, admins)
	emp.DELETE("/", h.Employees.Delete, admins)
	emp.GET("/:id", h.Employees.Get)

	usr := e.Group("/users", verify, admins)
	usr.GET("", h.Users.GetAll)
	usr.GET("/", h.Users.GetAll)
	usr.DELETE("", h.Users.Delete)
	usr.DELETE("/", h.Users.Delete)
	usr.GET("/:id", h.Users.Get)
}

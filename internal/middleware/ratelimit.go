package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/accesslab/employee-auth-api/internal/config"
)

// windowScript counts requests in a fixed window. The first hit arms the
// window's expiry; once the count exceeds the limit the remaining window in
// milliseconds is returned so the client can be told when to retry.
var windowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
if n > tonumber(ARGV[2]) then
  return redis.call('PTTL', KEYS[1])
end
return 0
`)

// RateLimit returns a middleware throttling requests per client IP per route
// using a fixed Redis window. It guards the credential endpoints against
// brute-force attempts. With limiting disabled or no Redis available it
// passes every request through.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, c.Path(), c.RealIP())
			wait, err := windowScript.Run(c.Request().Context(), rdb, []string{key},
				cfg.Window.Milliseconds(), cfg.Limit).Int64()
			if err != nil {
				// Limiter trouble must not take auth down; let the request through.
				return next(c)
			}
			if wait > 0 {
				retry := time.Duration(wait) * time.Millisecond
				c.Response().Header().Set("Retry-After",
					fmt.Sprintf("%.0f", retry.Round(time.Second).Seconds()))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}
			return next(c)
		}
	}
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RouteLogger logs each request exit with status, duration, trace ID and,
// when authenticated, the acting user id.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := Logger(c)
		start := time.Now()
		l.Debug().Str("method", c.Method()).Str("path", c.Path()).Msg("Entering request")
		err := c.Next()
		ev := l.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Int64("ms", time.Since(start).Milliseconds())
		if t := GetTenant(c); t.Valid() {
			ev = ev.Uint("user_id", t.UserID())
		}
		ev.Msg("Exiting request")
		return err
	}
}

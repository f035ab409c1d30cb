package middleware

import (
	"strings"

	"portfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// CORSConfig selects which browser origins may call the API with
// credentials.
type CORSConfig struct {
	// AllowedSuffix matches the frontend host, e.g. ".example.com".
	AllowedSuffix string
	// DevPassword admits any origin sending it in the dev-password header.
	DevPassword string
	// IsProduction turns off the localhost preflight shortcut.
	IsProduction bool
}

// CORS answers preflights and sets credentialed CORS headers for allowed
// origins. Requests without an Origin header pass through untouched;
// other origins get 403.
func CORS(cfg CORSConfig) fiber.Handler {
	suffix := strings.ToLower(cfg.AllowedSuffix)
	allowed := func(c *fiber.Ctx, origin string) bool {
		if suffix != "" && strings.HasSuffix(strings.ToLower(origin), suffix) {
			return true
		}
		return cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword
	}

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		preflight := c.Method() == fiber.MethodOptions
		if preflight && !cfg.IsProduction && isLocalOrigin(origin) {
			setCORSHeaders(c, origin)
			return c.SendStatus(fiber.StatusNoContent)
		}
		if !allowed(c, origin) {
			log.Warn().Str("origin", origin).Str("path", c.Path()).Msg("cors: origin rejected")
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
		}
		setCORSHeaders(c, origin)
		if preflight {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
	c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, dev-password, X-Trace-Id")
	c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, PATCH, DELETE, OPTIONS")
	c.Set(fiber.HeaderAccessControlExposeHeaders, traceIDHeader)
	c.Set(fiber.HeaderVary, fiber.HeaderOrigin)
}

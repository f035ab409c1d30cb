package middleware

import (
	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/pkg/response"
	"portfolio-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
)

const (
	userLocal   = "user"
	tenantLocal = "tenant"
)

// RequireAuth ensures a user is in the session and attaches its tenant.
// Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := auth.TenantOf(c.Locals(userLocal))
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals(tenantLocal, t)
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// GetTenant returns the tenant attached by RequireAuth. The zero tenant is
// returned outside RequireAuth, which the services reject.
func GetTenant(c *fiber.Ctx) tenant.Tenant {
	t, _ := c.Locals(tenantLocal).(tenant.Tenant)
	return t
}

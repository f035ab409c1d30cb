package health

import (
	"crypto/subtle"
	"strconv"
	"time"

	healthsvc "portfolio-backend/internal/application/health"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const serviceName = "portfolio-api"

// Handlers serves the unauthenticated health endpoints.
type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	HealthAdminKey string
}

// Reset GET /reset?key=HEALTH_ADMIN_KEY clears the request counters.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if !h.admin(c.Query("key")) {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	if err := healthsvc.ResetStats(c.UserContext(), h.Rdb, time.Now()); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

func (h *Handlers) admin(key string) bool {
	if h.HealthAdminKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.HealthAdminKey)) == 1
}

// JSON GET /health/json reports runtime, traffic and dependency status;
// 503 unless the database and Redis both answer.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := healthsvc.CollectHealth(c.UserContext(), h.Rdb, h.DB)
	code := fiber.StatusOK
	if result.Status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"service":      serviceName,
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	})
}

// Errors GET /health/errors[?limit=n] lists the latest 5xx responses.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	limit := int64(middleware.ErrorLogSize)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return response.Error(c, "Invalid limit", fiber.StatusBadRequest, nil)
		}
		if n < limit {
			limit = n
		}
	}
	entries, err := healthsvc.RecentErrors(c.UserContext(), h.Rdb, limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(entries)
}

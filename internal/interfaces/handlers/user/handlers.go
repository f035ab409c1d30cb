package user

import (
	usersvc "portfolio-backend/internal/application/user"
	authhandler "portfolio-backend/internal/interfaces/handlers/auth"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/pkg/response"
	"portfolio-backend/internal/user/policies"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers holds the user service and session config for create-user (session + cookie).
type Handlers struct {
	Service *usersvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// CreateUser POST /api/v1/users/create-user: register, start a session, return 201 with data.user.
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var req usersvc.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if req.Username == "" || req.Password == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}

	u, err := h.Service.CreateUser(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	authhandler.StartSession(c, h.Rdb, h.Config, u)
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": u}, nil)
}

// ViewUser GET /api/v1/users/view-user: the session user.
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	u, err := h.Service.ViewUser(c.UserContext(), middleware.GetTenant(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User retrieved successfully", fiber.Map{"user": u}, nil)
}

// RemoveUser DELETE /api/v1/users/remove-user: delete the session user with
// everything it owns, then drop all of its sessions.
func (h *Handlers) RemoveUser(c *fiber.Ctx) error {
	t := middleware.GetTenant(c)
	if err := h.Service.DeleteUser(c.UserContext(), t); err != nil {
		return response.FromError(c, err)
	}
	_ = policies.DestroyUserSessions(c.UserContext(), h.Rdb, t.UserID())
	authhandler.EndSession(c, h.Rdb, h.Config)
	return response.Success(c, "User removed successfully", nil, nil)
}

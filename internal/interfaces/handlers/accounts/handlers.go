package accounts

import (
	"strconv"

	accsvc "portfolio-backend/internal/application/accounts"
	"portfolio-backend/internal/application/valuation"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves /api/v1/accounts for the session user.
type Handlers struct {
	Service   *accsvc.Service
	Valuation *valuation.Service
}

// List GET /api/v1/accounts
func (h *Handlers) List(c *fiber.Ctx) error {
	out, err := h.Service.List(c.UserContext(), middleware.GetTenant(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Accounts retrieved successfully", fiber.Map{"accounts": out}, response.Count(len(out)))
}

// Create POST /api/v1/accounts
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req accsvc.CreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	acc, err := h.Service.Create(c.UserContext(), middleware.GetTenant(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Account created successfully", fiber.Map{"account": acc}, nil)
}

// Get GET /api/v1/accounts/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid account id", fiber.StatusBadRequest, nil)
	}
	acc, err := h.Service.Get(c.UserContext(), middleware.GetTenant(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Account retrieved successfully", fiber.Map{"account": acc}, nil)
}

// Update PATCH /api/v1/accounts/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid account id", fiber.StatusBadRequest, nil)
	}
	var req accsvc.UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	acc, err := h.Service.Update(c.UserContext(), middleware.GetTenant(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Account updated successfully", fiber.Map{"account": acc}, nil)
}

// Delete DELETE /api/v1/accounts/:id: removes the account and its holdings.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid account id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.UserContext(), middleware.GetTenant(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Account deleted successfully", nil, nil)
}

// Totals GET /api/v1/accounts/totals: market value and share of portfolio per account.
func (h *Handlers) Totals(c *fiber.Ctx) error {
	out, err := h.Valuation.AccountTotals(c.UserContext(), middleware.GetTenant(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Account totals retrieved successfully", fiber.Map{"totals": out}, response.Count(len(out)))
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

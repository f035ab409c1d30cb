package holdings

import (
	"strconv"

	holdsvc "portfolio-backend/internal/application/holdings"
	"portfolio-backend/internal/application/valuation"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves /api/v1/holdings for the session user.
type Handlers struct {
	Service   *holdsvc.Service
	Valuation *valuation.Service
}

// ViewHoldings GET /api/v1/holdings[?account_id=] returns the valuation rows,
// every account with its holdings, market value and percent of portfolio.
func (h *Handlers) ViewHoldings(c *fiber.Ctx) error {
	var f valuation.Filter
	if raw := c.Query("account_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return response.Error(c, "Invalid account_id", fiber.StatusBadRequest, nil)
		}
		accountID := uint(id)
		f.AccountID = &accountID
	}
	rows, err := h.Valuation.BaseHoldings(c.UserContext(), middleware.GetTenant(c), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Holdings retrieved successfully", fiber.Map{"holdings": rows}, response.Count(len(rows)))
}

// Columns GET /api/v1/holdings/columns
func (h *Handlers) Columns(c *fiber.Ctx) error {
	return response.Success(c, "Columns retrieved successfully", fiber.Map{"columns": domain.BaseHoldingColumns}, nil)
}

// Create POST /api/v1/holdings
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req holdsvc.CreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	hd, err := h.Service.Create(c.UserContext(), middleware.GetTenant(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Holding created successfully", fiber.Map{"holding": hd}, nil)
}

// Get GET /api/v1/holdings/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid holding id", fiber.StatusBadRequest, nil)
	}
	hd, err := h.Service.Get(c.UserContext(), middleware.GetTenant(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Holding retrieved successfully", fiber.Map{"holding": hd}, nil)
}

// Update PATCH /api/v1/holdings/:id: shares and/or the asset's current price.
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid holding id", fiber.StatusBadRequest, nil)
	}
	var req holdsvc.UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	hd, err := h.Service.Update(c.UserContext(), middleware.GetTenant(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Holding updated successfully", fiber.Map{"holding": hd}, nil)
}

// Delete DELETE /api/v1/holdings/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid holding id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.UserContext(), middleware.GetTenant(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Holding deleted successfully", nil, nil)
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

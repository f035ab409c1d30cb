package assets

import (
	"strconv"

	assetsvc "portfolio-backend/internal/application/assets"
	"portfolio-backend/internal/application/valuation"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handlers serves /api/v1/assets for the session user.
type Handlers struct {
	Service   *assetsvc.Service
	Valuation *valuation.Service
}

// PriceRequest body for PATCH /assets/:id/price. Accepts "12.34" or 12.34.
type PriceRequest struct {
	CurrentPrice *decimal.Decimal `json:"current_price"`
}

// List GET /api/v1/assets
func (h *Handlers) List(c *fiber.Ctx) error {
	out, err := h.Service.List(c.UserContext(), middleware.GetTenant(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assets retrieved successfully", fiber.Map{"assets": out}, response.Count(len(out)))
}

// Create POST /api/v1/assets
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req assetsvc.CreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	a, err := h.Service.Create(c.UserContext(), middleware.GetTenant(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Asset created successfully", fiber.Map{"asset": a}, nil)
}

// Get GET /api/v1/assets/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid asset id", fiber.StatusBadRequest, nil)
	}
	a, err := h.Service.Get(c.UserContext(), middleware.GetTenant(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Asset retrieved successfully", fiber.Map{"asset": a}, nil)
}

// Update PATCH /api/v1/assets/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid asset id", fiber.StatusBadRequest, nil)
	}
	var req assetsvc.UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	a, err := h.Service.Update(c.UserContext(), middleware.GetTenant(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Asset updated successfully", fiber.Map{"asset": a}, nil)
}

// UpdatePrice PATCH /api/v1/assets/:id/price
func (h *Handlers) UpdatePrice(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid asset id", fiber.StatusBadRequest, nil)
	}
	var req PriceRequest
	if err := c.BodyParser(&req); err != nil || req.CurrentPrice == nil {
		return response.Error(c, "current_price is required", fiber.StatusBadRequest, nil)
	}
	a, err := h.Service.UpdatePrice(c.UserContext(), middleware.GetTenant(c), id, *req.CurrentPrice)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Price updated successfully", fiber.Map{"asset": a}, nil)
}

// Delete DELETE /api/v1/assets/:id: removes the asset and every holding of it.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.Error(c, "Invalid asset id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.UserContext(), middleware.GetTenant(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Asset deleted successfully", nil, nil)
}

// Totals GET /api/v1/assets/totals
func (h *Handlers) Totals(c *fiber.Ctx) error {
	out, err := h.Valuation.AssetTotals(c.UserContext(), middleware.GetTenant(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Asset totals retrieved successfully", fiber.Map{"totals": out}, response.Count(len(out)))
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

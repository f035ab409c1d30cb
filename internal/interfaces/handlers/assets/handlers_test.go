package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	assetsvc "portfolio-backend/internal/application/assets"
	"portfolio-backend/internal/application/valuation"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database/dbtest"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAssetsTest(t *testing.T) (*gorm.DB, func(tenant.Tenant) *fiber.App) {
	db := dbtest.Open(t)
	h := &Handlers{Service: &assetsvc.Service{DB: db}, Valuation: &valuation.Service{DB: db}}
	return db, func(tn tenant.Tenant) *fiber.App {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user", map[string]interface{}{"user_id": strconv.FormatUint(uint64(tn.UserID()), 10)})
			return c.Next()
		}, middleware.RequireAuth())
		app.Get("/assets", h.List)
		app.Post("/assets", h.Create)
		app.Get("/assets/totals", h.Totals)
		app.Get("/assets/:id", h.Get)
		app.Patch("/assets/:id", h.Update)
		app.Patch("/assets/:id/price", h.UpdatePrice)
		app.Delete("/assets/:id", h.Delete)
		return app
	}
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(b, &out)
	return resp.StatusCode, out
}

func priceOf(t *testing.T, out map[string]interface{}) decimal.Decimal {
	t.Helper()
	a := out["data"].(map[string]interface{})["asset"].(map[string]interface{})
	p, err := decimal.NewFromString(a["current_price"].(string))
	require.NoError(t, err)
	return p
}

func TestAssets_CreateAndPrice(t *testing.T) {
	db, appFor := setupAssetsTest(t)
	alice := dbtest.User(t, db, "alice")
	app := appFor(alice)

	code, out := call(t, app, "POST", "/assets", map[string]interface{}{
		"ticker": "VTI", "name": "Vanguard Total Stock", "category": "etf", "current_price": "20.50",
	})
	require.Equal(t, fiber.StatusCreated, code)
	assert.True(t, priceOf(t, out).Equal(decimal.RequireFromString("20.5")))
	id := strconv.Itoa(int(out["data"].(map[string]interface{})["asset"].(map[string]interface{})["id"].(float64)))

	code, out = call(t, app, "PATCH", "/assets/"+id+"/price", map[string]interface{}{"current_price": 21.75})
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, priceOf(t, out).Equal(decimal.RequireFromString("21.75")))

	code, out = call(t, app, "GET", "/assets/"+id, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, priceOf(t, out).Equal(decimal.RequireFromString("21.75")))
}

func TestAssets_InvalidPrice(t *testing.T) {
	db, appFor := setupAssetsTest(t)
	alice := dbtest.User(t, db, "alice")
	asset := dbtest.Asset(t, db, alice, "VTI", "20.00")
	app := appFor(alice)
	path := "/assets/" + strconv.FormatUint(uint64(asset.ID), 10) + "/price"

	for _, p := range []string{"-1", "1.005", "100000000"} {
		code, out := call(t, app, "PATCH", path, map[string]string{"current_price": p})
		assert.Equal(t, fiber.StatusBadRequest, code, p)
		details, _ := out["error"].(map[string]interface{})["details"].(map[string]interface{})
		assert.Equal(t, string(domain.CheckViolation), details["kind"], p)
	}
	code, _ := call(t, app, "PATCH", path, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, code)

	got, err := (&assetsvc.Service{DB: db}).Get(context.Background(), alice, asset.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentPrice.Equal(decimal.RequireFromString("20")))
}

func TestAssets_OtherTenantIsNotFound(t *testing.T) {
	db, appFor := setupAssetsTest(t)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	asset := dbtest.Asset(t, db, alice, "VTI", "20.00")
	app := appFor(bob)
	id := strconv.FormatUint(uint64(asset.ID), 10)

	code, _ := call(t, app, "PATCH", "/assets/"+id+"/price", map[string]string{"current_price": "0.01"})
	assert.Equal(t, fiber.StatusNotFound, code)
	code, _ = call(t, app, "DELETE", "/assets/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, out := call(t, app, "GET", "/assets", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, out["data"].(map[string]interface{})["assets"])
}

func TestAssets_DeleteRemovesHoldings(t *testing.T) {
	db, appFor := setupAssetsTest(t)
	alice := dbtest.User(t, db, "alice")
	acc := dbtest.Account(t, db, alice, "IRA")
	asset := dbtest.Asset(t, db, alice, "VTI", "20.00")
	dbtest.Holding(t, db, alice, acc.ID, asset.ID, 10)
	app := appFor(alice)

	code, out := call(t, app, "GET", "/assets/totals", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"].(map[string]interface{})["totals"], 1)

	code, _ = call(t, app, "DELETE", "/assets/"+strconv.FormatUint(uint64(asset.ID), 10), nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Zero(t, dbtest.Count(t, db, alice, &domain.Holding{}))
	assert.Equal(t, int64(1), dbtest.Count(t, db, alice, &domain.Account{}))
}

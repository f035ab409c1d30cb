package user

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	usersvc "portfolio-backend/internal/application/user"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database/dbtest"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/tenant"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*fiber.App, *redis.Client, *gorm.DB) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	db := dbtest.Open(t)
	h := &Handlers{
		Service: &usersvc.Service{DB: db, BcryptCost: bcrypt.MinCost},
		Rdb:     rdb,
	}

	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/create-user", h.CreateUser)
	app.Get("/view-user", middleware.RequireAuth(), h.ViewUser)
	app.Delete("/remove-user", middleware.RequireAuth(), h.RemoveUser)
	return app, rdb, db
}

func do(t *testing.T, app *fiber.App, method, path, cookie string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(b, &out)
	return resp, out
}

func cookieOf(resp *http.Response) string {
	for _, c := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(c, middleware.SessionCookieName+"=") {
			return strings.SplitN(c, ";", 2)[0]
		}
	}
	return ""
}

func TestCreateUser_StartsSession(t *testing.T) {
	app, _, _ := setupUserTest(t)

	resp, out := do(t, app, "POST", "/create-user", "", map[string]string{"username": "alice", "password": "password1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data, _ := out["data"].(map[string]interface{})
	user, _ := data["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password_hash")

	cookie := cookieOf(resp)
	require.NotEmpty(t, cookie)
	resp, out = do(t, app, "GET", "/view-user", cookie, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data, _ = out["data"].(map[string]interface{})
	user, _ = data["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
}

func TestCreateUser_Rejections(t *testing.T) {
	app, _, _ := setupUserTest(t)
	_, _ = do(t, app, "POST", "/create-user", "", map[string]string{"username": "alice", "password": "password1"})

	cases := []struct {
		name string
		body map[string]string
		code int
	}{
		{"missing fields", map[string]string{"username": "bob"}, fiber.StatusBadRequest},
		{"bad username", map[string]string{"username": "b-b", "password": "password1"}, fiber.StatusBadRequest},
		{"bad password", map[string]string{"username": "bob", "password": "short1"}, fiber.StatusBadRequest},
		{"duplicate", map[string]string{"username": "alice", "password": "password2"}, fiber.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := do(t, app, "POST", "/create-user", "", tc.body)
			assert.Equal(t, tc.code, resp.StatusCode)
			assert.Empty(t, cookieOf(resp))
		})
	}
}

func TestViewUser_RequiresAuth(t *testing.T) {
	app, _, _ := setupUserTest(t)
	resp, _ := do(t, app, "GET", "/view-user", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRemoveUser_DeletesDataAndSessions(t *testing.T) {
	app, rdb, db := setupUserTest(t)
	resp, out := do(t, app, "POST", "/create-user", "", map[string]string{"username": "alice", "password": "password1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	cookie := cookieOf(resp)
	data, _ := out["data"].(map[string]interface{})
	user, _ := data["user"].(map[string]interface{})
	alice := tenant.New(uint(user["id"].(float64)))

	acc := dbtest.Account(t, db, alice, "IRA")
	asset := dbtest.Asset(t, db, alice, "VTI", "20.00")
	dbtest.Holding(t, db, alice, acc.ID, asset.ID, 10)
	bob := dbtest.User(t, db, "bob")
	dbtest.Account(t, db, bob, "Bob IRA")

	resp, _ = do(t, app, "DELETE", "/remove-user", cookie, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Zero(t, dbtest.Count(t, db, alice, &domain.Holding{}))
	assert.Zero(t, dbtest.Count(t, db, alice, &domain.Asset{}))
	assert.Zero(t, dbtest.Count(t, db, alice, &domain.Account{}))
	assert.Equal(t, int64(1), dbtest.Count(t, db, bob, &domain.Account{}))

	keys, err := rdb.Keys(context.Background(), "*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)

	resp, _ = do(t, app, "GET", "/view-user", cookie, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

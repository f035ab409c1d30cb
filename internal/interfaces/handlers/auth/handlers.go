package auth

import (
	"errors"

	authsvc "portfolio-backend/internal/auth"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Login POST /api/v1/auth/login: authenticate, create session, SAdd user_sessions:user_id, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, authsvc.ErrUsernamePasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	if req.Username == "" || req.Password == "" {
		return response.Error(c, authsvc.ErrUsernamePasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByUsernameAndPassword(c.UserContext(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrUsernamePasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, domain.ErrInvalidCredentials):
			log.Info().Str("username", req.Username).Msg("login rejected")
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.FromError(c, err)
		}
	}

	StartSession(c, h.Rdb, h.Config, user)
	log.Info().Uint("user_id", user.ID).Msg("login")
	return response.Success(c, "Login successful", fiber.Map{"user": authsvc.SessionUser(user)}, nil)
}

// StartSession rotates the session id, stores user in it, tracks the
// session under user_sessions:<id> and sets the cookie.
func StartSession(c *fiber.Ctx, rdb *redis.Client, cfg middleware.SessionConfig, user *domain.User) {
	sessionID := middleware.RegenerateSessionID(c)
	su := authsvc.SessionUser(user)
	userID, _ := su["user_id"].(string)
	middleware.SetSessionUser(c, middleware.SessionUser{UserID: userID, Username: user.Username})
	if rdb != nil {
		if err := rdb.SAdd(c.UserContext(), middleware.UserSessionsPrefix+userID, sessionID).Err(); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("track session failed")
		}
	}
	cookie := middleware.SessionCookieConfig(cfg)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
}

// EndSession deletes the current session from Redis and clears the cookie.
func EndSession(c *fiber.Ctx, rdb *redis.Client, cfg middleware.SessionConfig) {
	sessionID := middleware.GetSessionID(c)
	if rdb != nil && sessionID != "" {
		ctx := c.UserContext()
		if u, err := authsvc.VerifyUser(middleware.GetUser(c)); err == nil {
			_ = rdb.SRem(ctx, middleware.UserSessionsPrefix+u.UserID, sessionID).Err()
		}
		_ = rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(cfg)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
}

// Me GET /api/v1/auth/me: return current session user in standard success format.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		log.Debug().Bool("session_id_present", middleware.GetSessionID(c) != "").Msg("auth/me: not authenticated")
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout: SRem user_sessions:user_id, Del session key, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	EndSession(c, h.Rdb, h.Config)
	return response.Success(c, "Logged out successfully", nil, nil)
}

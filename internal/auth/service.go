package auth

import (
	"context"
	"errors"
	"strconv"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/tenant"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// UserFinder abstracts user lookup by username+password (for production GORM or test doubles).
type UserFinder interface {
	FindByUsernameAndPassword(ctx context.Context, username, password string) (*domain.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByUsernameAndPassword(ctx context.Context, username, password string) (*domain.User, error) {
	return LoginUser(g.DB.WithContext(ctx), LoginInput{Username: username, Password: password})
}

// LoginUser finds user by username and verifies password. Unknown user and
// wrong password both return domain.ErrInvalidCredentials.
func LoginUser(db *gorm.DB, input LoginInput) (*domain.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrUsernamePasswordRequired
	}
	var u domain.User
	if err := db.Where("username = ?", input.Username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &u, nil
}

// SessionUser builds the map stored in the session for u.
func SessionUser(u *domain.User) map[string]interface{} {
	return map[string]interface{}{
		"user_id":  strconv.FormatUint(uint64(u.ID), 10),
		"username": u.Username,
	}
}

// VerifyUser validates session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	username, _ := m["username"].(string)
	return &SessionUserShape{UserID: userID, Username: username}, nil
}

// TenantOf is the one place a tenant is derived from request state.
func TenantOf(sessionUser interface{}) (tenant.Tenant, error) {
	u, err := VerifyUser(sessionUser)
	if err != nil {
		return tenant.Tenant{}, err
	}
	id, err := strconv.ParseUint(u.UserID, 10, 64)
	if err != nil || id == 0 {
		return tenant.Tenant{}, ErrNotAuthenticated
	}
	return tenant.New(uint(id)), nil
}

package user

import (
	"context"
	"errors"
	"strings"

	"portfolio-backend/internal/application/cascade"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database"
	"portfolio-backend/internal/pkg/validation"
	"portfolio-backend/internal/tenant"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service registers, views and removes users.
type Service struct {
	DB *gorm.DB
	// BcryptCost falls back to bcrypt.DefaultCost when zero.
	BcryptCost int
}

type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUser registers a user. Only the bcrypt hash of the password is stored.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.NewNotNull("users", "username")
	}
	if !validation.IsValidUsername(username) {
		return nil, domain.ErrInvalidUsername
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, domain.ErrInvalidPassword
	}

	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{Username: username, PasswordHash: string(hash)}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return domain.NewUnique("users", "username")
		}
		return tx.Create(u).Error
	})
	if err != nil {
		return nil, database.TranslateError(err, "users")
	}
	log.Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("user created")
	return u, nil
}

// ViewUser returns the user t acts for.
func (s *Service) ViewUser(ctx context.Context, t tenant.Tenant) (*domain.User, error) {
	if err := t.Require(); err != nil {
		return nil, err
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("id = ?", t.UserID()).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes the user of t and everything it owns in one
// transaction. Rows of other users are untouched.
func (s *Service) DeleteUser(ctx context.Context, t tenant.Tenant) error {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return err
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteUser(tx, t)
	}); err != nil {
		return err
	}
	log.Info().Uint("user_id", t.UserID()).Msg("user deleted")
	return nil
}

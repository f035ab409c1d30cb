// Package tenant carries the acting user through every store operation and
// enforces row ownership on the tenant-scoped tables.
package tenant

import (
	"context"

	"portfolio-backend/internal/domain"

	"gorm.io/gorm"
)

// Tenant identifies the authenticated user an operation acts for.
// The zero value means no tenant has been established.
type Tenant struct {
	userID uint
}

// New returns the tenant for an already-authenticated user id.
func New(userID uint) Tenant {
	return Tenant{userID: userID}
}

func (t Tenant) UserID() uint {
	return t.userID
}

func (t Tenant) Valid() bool {
	return t.userID != 0
}

// Owns reports whether a row with the given user_id belongs to t.
func (t Tenant) Owns(userID uint) bool {
	return t.Valid() && t.userID == userID
}

// Require fails with ErrNoTenantContext for the zero tenant.
func (t Tenant) Require() error {
	if !t.Valid() {
		return domain.ErrNoTenantContext
	}
	return nil
}

type ctxKey struct{}

// Bind attaches t to ctx so the gorm plugin can scope statements.
func Bind(ctx context.Context, t Tenant) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the tenant bound to ctx, if any.
func FromContext(ctx context.Context) (Tenant, bool) {
	if ctx == nil {
		return Tenant{}, false
	}
	t, ok := ctx.Value(ctxKey{}).(Tenant)
	if !ok || !t.Valid() {
		return Tenant{}, false
	}
	return t, true
}

// Scoped returns a session of db whose statements run as t.
func Scoped(ctx context.Context, db *gorm.DB, t Tenant) (*gorm.DB, error) {
	if err := t.Require(); err != nil {
		return nil, err
	}
	return db.WithContext(Bind(ctx, t)), nil
}

package holdings

import (
	"context"
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database/dbtest"
	"portfolio-backend/internal/tenant"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	svc        *Service
	alice, bob tenant.Tenant
	account    *domain.Account
	asset      *domain.Asset
	bobAccount *domain.Account
	bobAsset   *domain.Asset
}

func setupHoldingsTest(t *testing.T) *fixture {
	db := dbtest.Open(t)
	f := &fixture{db: db, svc: &Service{DB: db}}
	f.alice = dbtest.User(t, db, "alice")
	f.bob = dbtest.User(t, db, "bob")
	f.account = dbtest.Account(t, db, f.alice, "IRA")
	f.asset = dbtest.Asset(t, db, f.alice, "VTI", "20.00")
	f.bobAccount = dbtest.Account(t, db, f.bob, "Bob IRA")
	f.bobAsset = dbtest.Asset(t, db, f.bob, "BND", "70.00")
	return f
}

func TestCreate(t *testing.T) {
	f := setupHoldingsTest(t)
	h, err := f.svc.Create(context.Background(), f.alice, CreateInput{AccountID: f.account.ID, AssetID: f.asset.ID, Shares: 10})
	require.NoError(t, err)
	assert.NotZero(t, h.ID)
	assert.Equal(t, f.alice.UserID(), h.UserID)

	got, err := f.svc.Get(context.Background(), f.alice, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Shares)
}

func TestCreate_CrossTenantReference(t *testing.T) {
	f := setupHoldingsTest(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice, CreateInput{AccountID: f.bobAccount.ID, AssetID: f.asset.ID, Shares: 1})
	assert.ErrorIs(t, err, domain.ErrCrossTenantReference)
	_, err = f.svc.Create(ctx, f.alice, CreateInput{AccountID: f.account.ID, AssetID: f.bobAsset.ID, Shares: 1})
	assert.ErrorIs(t, err, domain.ErrCrossTenantReference)

	assert.Equal(t, int64(0), dbtest.Count(t, f.db, f.alice, &domain.Holding{}))
	assert.Equal(t, int64(0), dbtest.Count(t, f.db, f.bob, &domain.Holding{}))
}

func TestCreate_MissingReferences(t *testing.T) {
	f := setupHoldingsTest(t)
	_, err := f.svc.Create(context.Background(), f.alice, CreateInput{AssetID: f.asset.ID})
	assert.True(t, domain.IsConstraint(err, domain.NotNullViolation))
}

func TestCreate_NegativeSharesAllowed(t *testing.T) {
	f := setupHoldingsTest(t)
	h, err := f.svc.Create(context.Background(), f.alice, CreateInput{AccountID: f.account.ID, AssetID: f.asset.ID, Shares: -5})
	require.NoError(t, err)
	assert.Equal(t, int64(-5), h.Shares)
}

func TestList_FilterByAccount(t *testing.T) {
	f := setupHoldingsTest(t)
	ctx := context.Background()
	other := dbtest.Account(t, f.db, f.alice, "Taxable")
	dbtest.Holding(t, f.db, f.alice, f.account.ID, f.asset.ID, 1)
	dbtest.Holding(t, f.db, f.alice, other.ID, f.asset.ID, 2)
	dbtest.Holding(t, f.db, f.bob, f.bobAccount.ID, f.bobAsset.ID, 3)

	all, err := f.svc.List(ctx, f.alice, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	id := other.ID
	some, err := f.svc.List(ctx, f.alice, &id)
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, int64(2), some[0].Shares)

	bobAcc := f.bobAccount.ID
	none, err := f.svc.List(ctx, f.alice, &bobAcc)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdate_SharesAndPrice(t *testing.T) {
	f := setupHoldingsTest(t)
	ctx := context.Background()
	h := dbtest.Holding(t, f.db, f.alice, f.account.ID, f.asset.ID, 10)

	got, err := f.svc.UpdateShares(ctx, f.alice, h.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.Shares)

	shares := int64(15)
	p := decimal.RequireFromString("22.25")
	got, err = f.svc.Update(ctx, f.alice, h.ID, UpdateInput{Shares: &shares, CurrentPrice: &p})
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.Shares)

	var asset domain.Asset
	require.NoError(t, f.db.WithContext(tenant.Bind(ctx, f.alice)).Where("id = ?", f.asset.ID).First(&asset).Error)
	assert.True(t, asset.CurrentPrice.Equal(p))
}

func TestUpdate_InvalidPriceLeavesShares(t *testing.T) {
	f := setupHoldingsTest(t)
	ctx := context.Background()
	h := dbtest.Holding(t, f.db, f.alice, f.account.ID, f.asset.ID, 10)

	shares := int64(99)
	p := decimal.RequireFromString("-1")
	_, err := f.svc.Update(ctx, f.alice, h.ID, UpdateInput{Shares: &shares, CurrentPrice: &p})
	assert.True(t, domain.IsConstraint(err, domain.CheckViolation))

	got, err := f.svc.Get(ctx, f.alice, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Shares)
}

func TestUpdateAndDelete_OtherTenant(t *testing.T) {
	f := setupHoldingsTest(t)
	ctx := context.Background()
	h := dbtest.Holding(t, f.db, f.alice, f.account.ID, f.asset.ID, 10)

	_, err := f.svc.UpdateShares(ctx, f.bob, h.ID, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.bob, h.ID), domain.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, f.alice, h.ID))
	_, err = f.svc.Get(ctx, f.alice, h.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package valuation

import (
	"context"
	"fmt"
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database/dbtest"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

var epsilon = decimal.New(1, -12)

func rowsFor(shares, cents []int64) []domain.BaseHolding {
	n := len(shares)
	if len(cents) < n {
		n = len(cents)
	}
	rows := make([]domain.BaseHolding, n)
	for i := 0; i < n; i++ {
		s := shares[i]
		rows[i] = domain.BaseHolding{
			AccountID:    1,
			UserID:       1,
			Shares:       &s,
			CurrentPrice: decimal.NewNullDecimal(decimal.New(cents[i], -2)),
		}
	}
	return rows
}

func TestComputeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("percentages sum to one when the portfolio is positive", prop.ForAll(
		func(shares, cents []int64) bool {
			rows := rowsFor(shares, cents)
			Compute(rows)
			total := Total(rows)
			sum := decimal.Zero
			for _, r := range rows {
				if !r.Percent.Valid {
					return false
				}
				sum = sum.Add(r.Percent.Decimal)
			}
			if total.IsPositive() {
				return sum.Sub(decimal.NewFromInt(1)).Abs().LessThan(epsilon)
			}
			return sum.IsZero()
		},
		gen.SliceOf(gen.Int64Range(0, 10000)),
		gen.SliceOf(gen.Int64Range(0, 9999999999)),
	))

	properties.Property("market value is price times shares", prop.ForAll(
		func(shares, cents []int64) bool {
			rows := rowsFor(shares, cents)
			Compute(rows)
			for _, r := range rows {
				want := r.CurrentPrice.Decimal.Mul(decimal.NewFromInt(*r.Shares))
				if !r.MarketValue.Valid || !r.MarketValue.Decimal.Equal(want) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-1000, 1000)),
		gen.SliceOf(gen.Int64Range(0, 100000)),
	))

	properties.Property("non-positive totals give zero percent", prop.ForAll(
		func(shares []int64) bool {
			cents := make([]int64, len(shares))
			for i := range cents {
				cents[i] = 100
			}
			rows := rowsFor(shares, cents)
			Compute(rows)
			if Total(rows).IsPositive() {
				return true
			}
			for _, r := range rows {
				if !r.Percent.Decimal.IsZero() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-1000, 0)),
	))

	properties.TestingRun(t)
}

func TestIsolationProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 15
	properties := gopter.NewProperties(params)

	properties.Property("a tenant only ever sees its own rows", prop.ForAll(
		func(aliceShares, bobShares []int64) bool {
			db := dbtest.Open(t)
			svc := &Service{DB: db}
			alice := dbtest.User(t, db, "alice")
			bob := dbtest.User(t, db, "bob")
			aAcc := dbtest.Account(t, db, alice, "A")
			bAcc := dbtest.Account(t, db, bob, "B")
			for i, s := range aliceShares {
				asset := dbtest.Asset(t, db, alice, fmt.Sprintf("A%d", i), "10.00")
				dbtest.Holding(t, db, alice, aAcc.ID, asset.ID, s)
			}
			for i, s := range bobShares {
				asset := dbtest.Asset(t, db, bob, fmt.Sprintf("B%d", i), "10.00")
				dbtest.Holding(t, db, bob, bAcc.ID, asset.ID, s)
			}

			rows, err := svc.BaseHoldings(context.Background(), alice, Filter{})
			if err != nil {
				return false
			}
			want := len(aliceShares)
			if want == 0 {
				want = 1 // the empty account row
			}
			if len(rows) != want {
				return false
			}
			for _, r := range rows {
				if r.UserID != alice.UserID() || r.AccountID != aAcc.ID {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.Int64Range(0, 100)),
		gen.SliceOfN(5, gen.Int64Range(0, 100)),
	))

	properties.TestingRun(t)
}

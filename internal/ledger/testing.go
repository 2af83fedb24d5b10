package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// SeedBalance is a test helper that overwrites the running balance of an account
// without recording a transaction.
func SeedBalance(ctx context.Context, s Store, id int64, amount decimal.Decimal) error {
	return s.WithinAccount(ctx, id, func(ctx context.Context, u Unit) error {
		acc := u.Account()
		acc.Balance = amount
		return u.SaveAccount(ctx, acc)
	})
}

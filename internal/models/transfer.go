package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RecentTransferWindow caps how many transfers the dashboard shows for a
// selected account. The upstream returns newest first.
const RecentTransferWindow = 5

var (
	ErrAmountMalformed   = errors.New("amount is not a valid decimal number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountPrecision   = errors.New("amount cannot have more than 2 decimal places")
)

// Transfer is an upstream money movement between two accounts, identified by
// their 16-digit account numbers. Transfers are created server-side and are
// immutable once returned.
type Transfer struct {
	ID          string          `json:"id"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ParseAmount parses a user-entered money amount. The amount must be a
// positive decimal with at most two fractional digits; anything else is
// rejected with a specific error before any network call is made.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrAmountMalformed
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrAmountNotPositive
	}

	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, ErrAmountPrecision
	}

	return amount, nil
}

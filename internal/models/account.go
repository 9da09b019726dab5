package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// AccountNumberLength is the number of digits in a bank account number.
	AccountNumberLength = 16

	// accountNumberGroupSize is the digit grouping used for display.
	accountNumberGroupSize = 4
)

var (
	ErrInvalidAccountNumber = errors.New("account number must be exactly 16 digits")
	ErrEmptyAccountNumber   = errors.New("account number is required")
)

// Account is the upstream banking API's view of a customer account. The
// dashboard never mutates an Account in place; entries are only ever replaced
// wholesale by a fresh server response.
type Account struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user"`
	Name          string          `json:"name"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CanCover reports whether the account's last-known balance covers the given
// amount. This is an advisory check only; the upstream ledger is authoritative.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero) && a.Balance.GreaterThanOrEqual(amount)
}

// MaskedNumber returns the account number formatted for display with all but
// the last group masked, e.g. "**** **** **** 1234".
func (a *Account) MaskedNumber() string {
	return MaskAccountNumber(a.AccountNumber)
}

// NormalizeAccountNumber strips display separators (spaces, dashes, dots) from
// an account number and validates that exactly 16 digits remain. Any other
// character makes the number invalid rather than being silently dropped.
func NormalizeAccountNumber(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyAccountNumber
	}

	var b strings.Builder
	b.Grow(AccountNumberLength)
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.':
			// separator, dropped
		default:
			return "", ErrInvalidAccountNumber
		}
	}

	normalized := b.String()
	if len(normalized) != AccountNumberLength {
		return "", ErrInvalidAccountNumber
	}

	return normalized, nil
}

// FormatAccountNumber renders a normalized account number in display groups of
// four digits. Inputs that are not 16 digits are returned unchanged.
func FormatAccountNumber(accountNumber string) string {
	if len(accountNumber) != AccountNumberLength {
		return accountNumber
	}

	groups := make([]string, 0, AccountNumberLength/accountNumberGroupSize)
	for i := 0; i < AccountNumberLength; i += accountNumberGroupSize {
		groups = append(groups, accountNumber[i:i+accountNumberGroupSize])
	}
	return strings.Join(groups, " ")
}

// MaskAccountNumber hides all but the last group of a normalized account
// number. Inputs that are not 16 digits are masked entirely.
func MaskAccountNumber(accountNumber string) string {
	if len(accountNumber) != AccountNumberLength {
		return "****"
	}

	return "**** **** **** " + accountNumber[AccountNumberLength-accountNumberGroupSize:]
}

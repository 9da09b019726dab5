package bankapi

import (
	"context"
	"time"

	"bark-console/internal/models"

	"github.com/shopspring/decimal"
)

// CreateTransferRequest is the normalized payload for a money movement. Both
// account references are 16-digit account numbers with separators already
// stripped.
type CreateTransferRequest struct {
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
}

// CreateAccountRequest is the normalized payload for opening an account on
// behalf of a known customer.
type CreateAccountRequest struct {
	UserID         string
	AccountNumber  string
	InitialDeposit decimal.Decimal
}

// Credential is the explicit session object the client carries instead of
// ambient global token state. Invalidate is fired once when the upstream
// answers 401; the owner decides what happens next.
type Credential interface {
	Token() string
	Invalidate()
}

// MetricsRecorder is the slice of the metrics surface the client needs.
// Satisfied by services.PrometheusMetrics.
type MetricsRecorder interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
}

// ClientInterface defines the contract for the upstream banking API. Every
// call is a suspension point and takes a context; raw transport errors never
// escape the implementation.
type ClientInterface interface {
	// Login exchanges agent credentials for an upstream bearer token. The
	// only unauthenticated call.
	Login(ctx context.Context, username, password string) (string, error)

	Accounts(ctx context.Context) ([]models.Account, error)
	Account(ctx context.Context, accountID string) (*models.Account, error)
	Transfers(ctx context.Context, accountID string, limit int) ([]models.Transfer, error)
	CreateTransfer(ctx context.Context, req CreateTransferRequest) (*models.Transfer, error)
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.Account, error)
	Users(ctx context.Context) ([]models.User, error)

	// WithCredential returns a client bound to the given session credential,
	// sharing the transport and circuit breaker of the receiver.
	WithCredential(cred Credential) ClientInterface
}

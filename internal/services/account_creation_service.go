package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"bark-console/internal/bankapi"
	"bark-console/internal/models"
)

var ErrUnknownUser = errors.New("user is not a known bank customer")

// AccountCreationService opens accounts for known customers. The customer
// list is fetched upstream once per workspace and cached; a fetch failure
// leaves the cache empty so the next call retries.
type AccountCreationService struct {
	client    bankapi.ClientInterface
	directory DirectoryServiceInterface
	logger    *slog.Logger
	metrics   MetricsRecorderInterface

	mu          sync.Mutex
	users       []models.User
	usersLoaded bool
}

// NewAccountCreationService creates an account creator for one workspace
func NewAccountCreationService(
	client bankapi.ClientInterface,
	directory DirectoryServiceInterface,
	logger *slog.Logger,
	metrics MetricsRecorderInterface,
) AccountCreationServiceInterface {
	return &AccountCreationService{
		client:    client,
		directory: directory,
		logger:    logger,
		metrics:   metrics,
	}
}

func (a *AccountCreationService) Users(ctx context.Context) ([]models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.usersLoaded {
		return a.copyUsersLocked(), nil
	}

	users, err := a.client.Users(ctx)
	if err != nil {
		a.logger.Warn("user list fetch failed", "error", err.Error())
		return nil, err
	}

	a.users = users
	a.usersLoaded = true
	return a.copyUsersLocked(), nil
}

func (a *AccountCreationService) Create(ctx context.Context, req AccountCreationRequest) (*models.Account, error) {
	users, err := a.Users(ctx)
	if err != nil {
		return nil, err
	}

	if !userKnown(users, req.UserID) {
		return nil, ErrUnknownUser
	}

	accountNumber, err := models.NormalizeAccountNumber(req.AccountNumber)
	if err != nil {
		return nil, err
	}

	deposit, err := models.ParseAmount(req.InitialDeposit)
	if err != nil {
		return nil, err
	}

	account, err := a.client.CreateAccount(ctx, bankapi.CreateAccountRequest{
		UserID:         req.UserID,
		AccountNumber:  accountNumber,
		InitialDeposit: deposit,
	})
	if err != nil {
		return nil, err
	}

	a.metrics.IncrementCounter("account_created", nil)
	a.logger.Info("account created",
		"account_id", account.ID,
		"account_number", models.MaskAccountNumber(account.AccountNumber),
	)

	// Refresh failures are logged only; the account exists upstream.
	if err := a.directory.Load(ctx); err != nil {
		a.logger.Warn("post-creation directory refresh failed", "error", err.Error())
	}

	return account, nil
}

func (a *AccountCreationService) copyUsersLocked() []models.User {
	users := make([]models.User, len(a.users))
	copy(users, a.users)
	return users
}

func userKnown(users []models.User, userID string) bool {
	for i := range users {
		if users[i].ID == userID {
			return true
		}
	}
	return false
}

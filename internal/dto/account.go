package dto

import (
	"time"

	"bark-console/internal/models"
)

// Account Request DTOs

// CreateAccountRequest represents the request payload for opening a new
// account for a known bank customer
type CreateAccountRequest struct {
	UserID         string `json:"user_id" validate:"required"`
	AccountNumber  string `json:"account_number" validate:"required,account_number"`
	InitialDeposit string `json:"initial_deposit" validate:"required,money_amount"`
}

// Account Response DTOs

// DirectoryResponse is the account directory snapshot plus its load state,
// exactly as the dashboard should render it
type DirectoryResponse struct {
	Accounts  []models.Account `json:"accounts"`
	Loading   bool             `json:"loading"`
	LastError string           `json:"last_error,omitempty"`
	LoadedAt  *time.Time       `json:"loaded_at,omitempty"`
}

// CreateAccountResponse represents the response after opening an account
type CreateAccountResponse struct {
	Account *models.Account `json:"account"`
	Message string          `json:"message"`
}

// UserListResponse represents the workspace's cached bank-customer list
type UserListResponse struct {
	Users []models.User `json:"users"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

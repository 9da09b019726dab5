package dto

import "bark-console/internal/models"

// Transfer Request DTOs

// SubmitTransferRequest represents the request payload for submitting a
// transfer out of the currently selected account
type SubmitTransferRequest struct {
	ToAccountNumber string `json:"to_account_number" validate:"required,account_number"`
	Amount          string `json:"amount" validate:"required,money_amount"`
}

// Transfer Response DTOs

// TransferResponse represents the response after a successful transfer.
// RefreshDeferred is true when the transfer went through upstream but the
// follow-up account refresh failed; the client should refresh manually.
type TransferResponse struct {
	Transfer        *models.Transfer `json:"transfer"`
	RefreshDeferred bool             `json:"refresh_deferred"`
	Message         string           `json:"message"`
}

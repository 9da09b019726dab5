package dto

import (
	"time"

	"bark-console/internal/models"
)

// Selection Response DTOs

// SelectionResponse is the currently selected account's detail view. Selected
// is false when nothing is selected; the remaining fields are then absent.
type SelectionResponse struct {
	Selected   bool              `json:"selected"`
	Loading    bool              `json:"loading"`
	Account    *models.Account   `json:"account,omitempty"`
	Transfers  []models.Transfer `json:"transfers,omitempty"`
	SelectedAt *time.Time        `json:"selected_at,omitempty"`
}

package handlers

import (
	stderrors "errors"
	"net/http"

	"bark-console/internal/dto"
	"bark-console/internal/errors"
	"bark-console/internal/models"
	"bark-console/internal/services"

	"github.com/labstack/echo/v4"
)

// TransferHandler submits transfers sourced from the current selection
type TransferHandler struct{}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler() *TransferHandler {
	return &TransferHandler{}
}

// Submit sends a transfer from the selected account to the given destination.
// All validation happens before any upstream call; an upstream rejection
// leaves every local snapshot untouched.
func (h *TransferHandler) Submit(c echo.Context) error {
	workspace, err := getWorkspaceFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.SubmitTransferRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	result, err := workspace.Transfers.Submit(c.Request().Context(), services.TransferRequest{
		ToAccountNumber: req.ToAccountNumber,
		Amount:          req.Amount,
	})
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrNoSelection):
			return SendError(c, errors.ValidationMissingSelection)
		case stderrors.Is(err, services.ErrSameAccount):
			return SendError(c, errors.ValidationSameAccount)
		case stderrors.Is(err, services.ErrInsufficientFunds):
			return SendError(c, errors.ValidationInsufficientFunds)
		case stderrors.Is(err, models.ErrInvalidAccountNumber), stderrors.Is(err, models.ErrEmptyAccountNumber):
			return SendError(c, errors.ValidationAccountNumber)
		case stderrors.Is(err, models.ErrAmountMalformed), stderrors.Is(err, models.ErrAmountNotPositive):
			return SendError(c, errors.ValidationInvalidAmount)
		case stderrors.Is(err, models.ErrAmountPrecision):
			return SendError(c, errors.ValidationAmountPrecision)
		}
		return SendUpstreamError(c, err)
	}

	message := "Transfer submitted"
	if result.RefreshFailed {
		message = "Transfer submitted; account data may be stale until the next refresh"
	}

	return c.JSON(http.StatusCreated, dto.TransferResponse{
		Transfer:        result.Transfer,
		RefreshDeferred: result.RefreshFailed,
		Message:         message,
	})
}

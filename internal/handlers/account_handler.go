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

// AccountHandler serves the account directory and account creation
type AccountHandler struct{}

// NewAccountHandler creates a new account handler
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// Directory returns the workspace's current account snapshot. This never
// calls upstream; stale data plus the recorded load error is exactly what
// the dashboard should show.
func (h *AccountHandler) Directory(c echo.Context) error {
	workspace, err := getWorkspaceFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	snapshot := workspace.Directory.Snapshot()
	return c.JSON(http.StatusOK, directoryResponse(snapshot))
}

// Refresh re-fetches the whole directory from upstream and returns the
// resulting snapshot. On failure the previous snapshot survives and comes
// back with the load error set.
func (h *AccountHandler) Refresh(c echo.Context) error {
	workspace, err := getWorkspaceFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	if err := workspace.Directory.Load(c.Request().Context()); err != nil {
		return SendUpstreamError(c, err)
	}

	return c.JSON(http.StatusOK, directoryResponse(workspace.Directory.Snapshot()))
}

// RefreshAccount re-fetches one account and swaps it into the snapshot in
// place, so the list converges with fresh detail without a wholesale reload.
// An id absent from the snapshot leaves it unchanged.
func (h *AccountHandler) RefreshAccount(c echo.Context) error {
	workspace, err := getWorkspaceFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	accountID := c.Param("accountId")
	if accountID == "" {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("accountId is required"))
	}

	if err := workspace.Directory.RefreshOne(c.Request().Context(), accountID); err != nil {
		return SendUpstreamError(c, err)
	}

	return c.JSON(http.StatusOK, directoryResponse(workspace.Directory.Snapshot()))
}

// Create opens a new account for a known bank customer.
func (h *AccountHandler) Create(c echo.Context) error {
	workspace, err := getWorkspaceFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	account, err := workspace.Creator.Create(c.Request().Context(), services.AccountCreationRequest{
		UserID:         req.UserID,
		AccountNumber:  req.AccountNumber,
		InitialDeposit: req.InitialDeposit,
	})
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrUnknownUser):
			return SendError(c, errors.ValidationUnknownUser)
		case stderrors.Is(err, models.ErrInvalidAccountNumber), stderrors.Is(err, models.ErrEmptyAccountNumber):
			return SendError(c, errors.ValidationAccountNumber)
		case stderrors.Is(err, models.ErrAmountMalformed), stderrors.Is(err, models.ErrAmountNotPositive):
			return SendError(c, errors.ValidationInvalidAmount)
		case stderrors.Is(err, models.ErrAmountPrecision):
			return SendError(c, errors.ValidationAmountPrecision)
		}
		return SendUpstreamError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.CreateAccountResponse{
		Account: account,
		Message: "Account created",
	})
}

// Users returns the bank's customer list, fetched upstream once per
// workspace and cached.
func (h *AccountHandler) Users(c echo.Context) error {
	workspace, err := getWorkspaceFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	users, err := workspace.Creator.Users(c.Request().Context())
	if err != nil {
		return SendUpstreamError(c, err)
	}

	return c.JSON(http.StatusOK, dto.UserListResponse{Users: users})
}

func directoryResponse(snapshot services.DirectorySnapshot) dto.DirectoryResponse {
	resp := dto.DirectoryResponse{
		Accounts:  snapshot.Accounts,
		Loading:   snapshot.Loading,
		LastError: snapshot.LastError,
	}
	if !snapshot.LoadedAt.IsZero() {
		loadedAt := snapshot.LoadedAt
		resp.LoadedAt = &loadedAt
	}
	return resp
}

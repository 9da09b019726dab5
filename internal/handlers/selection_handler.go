package handlers

import (
	stderrors "errors"
	"net/http"

	"bark-console/internal/dto"
	"bark-console/internal/errors"
	"bark-console/internal/services"

	"github.com/labstack/echo/v4"
)

// SelectionHandler serves the workspace's single selected account
type SelectionHandler struct{}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler() *SelectionHandler {
	return &SelectionHandler{}
}

// State returns the current selection with its load flag. An empty selection
// is a normal 200, not an error.
func (h *SelectionHandler) State(c echo.Context) error {
	workspace, err := getWorkspaceFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	return c.JSON(http.StatusOK, selectionResponse(workspace.Selection.State()))
}

// Select fetches fresh detail and recent transfers for the account and makes
// it the selection. When a newer select lands while this one is in flight,
// the newer one wins; this request then answers with whatever the newest
// request produced instead of failing.
func (h *SelectionHandler) Select(c echo.Context) error {
	workspace, err := getWorkspaceFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	accountID := c.Param("accountId")
	if accountID == "" {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("accountId is required"))
	}

	if err := workspace.Selection.Select(c.Request().Context(), accountID); err != nil {
		if stderrors.Is(err, services.ErrSelectionSuperseded) {
			return c.JSON(http.StatusOK, selectionResponse(workspace.Selection.State()))
		}
		return SendUpstreamError(c, err)
	}

	return c.JSON(http.StatusOK, selectionResponse(workspace.Selection.State()))
}

// Deselect clears the selection. Idempotent.
func (h *SelectionHandler) Deselect(c echo.Context) error {
	workspace, err := getWorkspaceFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	workspace.Selection.Deselect()
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Selection cleared"})
}

func selectionResponse(state services.SelectionState) dto.SelectionResponse {
	resp := dto.SelectionResponse{Loading: state.Loading}
	if state.Selection != nil {
		resp.Selected = true
		account := state.Selection.Account
		resp.Account = &account
		resp.Transfers = state.Selection.Transfers
		selectedAt := state.Selection.SelectedAt
		resp.SelectedAt = &selectedAt
	}
	return resp
}

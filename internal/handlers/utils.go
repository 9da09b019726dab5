package handlers

import (
	stderrors "errors"
	"fmt"
	"strings"

	"bark-console/internal/bankapi"
	"bark-console/internal/errors"
	"bark-console/internal/services"

	"github.com/labstack/echo/v4"
)

// ErrUnauthorized is returned when the request context carries no workspace
var ErrUnauthorized = fmt.Errorf("unauthorized")

// WorkspaceContextKey is the context key the session-auth middleware stores
// the resolved workspace under.
const WorkspaceContextKey = "workspace"

// getWorkspaceFromContext extracts the signed-in agent's workspace from
// context. Returns ErrUnauthorized if the auth middleware did not run.
func getWorkspaceFromContext(c echo.Context) (*services.Workspace, error) {
	value := c.Get(WorkspaceContextKey)
	if value == nil {
		return nil, ErrUnauthorized
	}

	workspace, ok := value.(*services.Workspace)
	if !ok {
		return nil, ErrUnauthorized
	}

	return workspace, nil
}

// SendUpstreamError maps a banking-API failure to the matching error code.
// Upstream 401s read as a dead session to the client; everything else keeps
// the upstream's detail string when one was provided.
func SendUpstreamError(c echo.Context, err error) error {
	if bankapi.IsAuthError(err) {
		return SendError(c, errors.AuthUpstreamRejected)
	}

	if stderrors.Is(err, bankapi.ErrUpstreamUnavailable) {
		return SendError(c, errors.UpstreamUnavailable)
	}

	var apiErr *bankapi.APIError
	if stderrors.As(err, &apiErr) {
		if apiErr.Timeout {
			return SendError(c, errors.UpstreamTimeout)
		}
		if apiErr.Detail != "" {
			return SendError(c, errors.UpstreamError, errors.WithDetails(apiErr.Detail))
		}
		return SendError(c, errors.UpstreamError)
	}

	return SendSystemError(c, err)
}

func getClientIP(c echo.Context) string {
	xff := c.Request().Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := c.Request().Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	return c.Request().RemoteAddr
}

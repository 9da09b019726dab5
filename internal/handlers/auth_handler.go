package handlers

import (
	"log/slog"
	"net/http"

	"bark-console/internal/bankapi"
	"bark-console/internal/dto"
	"bark-console/internal/errors"
	"bark-console/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles agent sign-in and sign-out
type AuthHandler struct {
	sessions services.SessionServiceInterface
	tokens   services.TokenServiceInterface
	manager  services.WorkspaceManagerInterface
	logger   *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(
	sessions services.SessionServiceInterface,
	tokens services.TokenServiceInterface,
	manager services.WorkspaceManagerInterface,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		tokens:   tokens,
		manager:  manager,
		logger:   logger,
	}
}

// Login exchanges upstream banking-API credentials for a gateway session
// token. The upstream token never appears in the response; it is sealed into
// the session row and bound into the workspace's client.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	result, err := h.sessions.Login(ctx, req.AgentName, req.Password)
	if err != nil {
		if bankapi.IsAuthError(err) {
			return SendError(c, errors.AuthInvalidCredentials)
		}
		return SendUpstreamError(c, err)
	}

	workspace := h.manager.Create(result.Session, result.UpstreamToken)

	// The initial directory load failing is not fatal; the snapshot carries
	// the error and the client retries through the refresh endpoint.
	if err := workspace.Start(ctx); err != nil {
		h.logger.Warn("initial directory load failed",
			"session_id", result.Session.ID,
			"agent_name", result.Session.AgentName,
			"client_ip", getClientIP(c),
			"error", err.Error())
	}

	token, expiresAt, err := h.tokens.GenerateSessionToken(result.Session)
	if err != nil {
		h.manager.Retire(result.Session.ID)
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.SessionTokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		SessionID:   result.Session.ID.String(),
		AgentName:   result.Session.AgentName,
	})
}

// Logout revokes the session and retires its workspace. Always answers 200 so
// a replayed logout leaks nothing about session state.
func (h *AuthHandler) Logout(c echo.Context) error {
	sessionID, ok := c.Get("session_id").(uuid.UUID)
	if !ok {
		return SendError(c, errors.AuthMissingToken)
	}

	h.manager.Retire(sessionID)

	if err := h.sessions.Revoke(sessionID); err != nil {
		h.logger.Warn("failed to revoke session on logout",
			"session_id", sessionID, "error", err.Error())
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Signed out",
	})
}

package middleware

import (
	stderrors "errors"
	"log/slog"

	"bark-console/internal/errors"
	"bark-console/internal/handlers"
	"bark-console/internal/models"
	"bark-console/internal/repositories"
	"bark-console/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireSession validates the gateway session JWT, resolves the agent
// session it references, and puts the session's workspace into the request
// context. A workspace lost to a gateway restart is rebuilt from the sealed
// upstream token.
func RequireSession(
	tokens services.TokenServiceInterface,
	sessions services.SessionServiceInterface,
	manager services.WorkspaceManagerInterface,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			token, err := tokens.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			claims, err := tokens.ValidateSessionToken(token)
			if err != nil {
				if stderrors.Is(err, services.ErrExpiredToken) {
					return handlers.SendError(c, errors.AuthExpiredToken)
				}
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			sessionID, err := uuid.Parse(claims.SessionID)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat,
					errors.WithDetails("Invalid session ID in token"))
			}

			resolved, err := sessions.Resolve(sessionID)
			if err != nil {
				switch {
				case stderrors.Is(err, models.ErrSessionExpired):
					return handlers.SendError(c, errors.AuthExpiredToken)
				case stderrors.Is(err, models.ErrSessionRevoked):
					return handlers.SendError(c, errors.AuthSessionRevoked)
				case stderrors.Is(err, repositories.ErrSessionNotFound):
					return handlers.SendError(c, errors.AuthSessionRevoked)
				}
				return handlers.SendSystemError(c, err)
			}

			workspace, ok := manager.Get(sessionID)
			if !ok {
				workspace = manager.Create(resolved.Session, resolved.UpstreamToken)
				if err := workspace.Start(c.Request().Context()); err != nil {
					slog.Warn("initial directory load failed for rebuilt workspace",
						"trace_id", GetTraceID(c),
						"session_id", sessionID,
						"error", err.Error())
				}
			}

			c.Set("session_id", sessionID)
			c.Set("agent_name", resolved.Session.AgentName)
			c.Set("workspace", workspace)

			return next(c)
		}
	}
}

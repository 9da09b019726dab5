package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/dto"
	"bark-console/internal/logging"
	"bark-console/internal/models"
	"bark-console/internal/services"
	"bark-console/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestAuthHandler(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

type AuthHandlerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	sessions  *service_mocks.MockSessionServiceInterface
	tokens    *service_mocks.MockTokenServiceInterface
	manager   *service_mocks.MockWorkspaceManagerInterface
	directory *service_mocks.MockDirectoryServiceInterface
	handler   *AuthHandler
	e         *echo.Echo
}

func (s *AuthHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sessions = service_mocks.NewMockSessionServiceInterface(s.ctrl)
	s.tokens = service_mocks.NewMockTokenServiceInterface(s.ctrl)
	s.manager = service_mocks.NewMockWorkspaceManagerInterface(s.ctrl)
	s.directory = service_mocks.NewMockDirectoryServiceInterface(s.ctrl)
	s.handler = NewAuthHandler(s.sessions, s.tokens, s.manager, logging.Discard())
	s.e = echo.New()
	s.e.Validator = NewValidator()
}

func (s *AuthHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthHandlerSuite) newLoginContext(body map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "trace-auth-test")
	return c, rec
}

func (s *AuthHandlerSuite) newSession() *models.AgentSession {
	return &models.AgentSession{
		ID:        uuid.New(),
		AgentName: "agent.smith",
		ExpiresAt: time.Now().UTC().Add(12 * time.Hour),
	}
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("successful login issues a session token", func() {
		session := s.newSession()
		workspace := &services.Workspace{
			SessionID: session.ID,
			AgentName: session.AgentName,
			Directory: s.directory,
		}
		expiresAt := session.ExpiresAt

		s.sessions.EXPECT().
			Login(gomock.Any(), "agent.smith", "hunter2").
			Return(&services.LoginResult{Session: session, UpstreamToken: "upstream-token"}, nil)
		s.manager.EXPECT().Create(session, "upstream-token").Return(workspace)
		s.directory.EXPECT().Load(gomock.Any()).Return(nil)
		s.tokens.EXPECT().GenerateSessionToken(session).Return("gateway-jwt", expiresAt, nil)

		c, rec := s.newLoginContext(map[string]string{
			"agent_name": "agent.smith",
			"password":   "hunter2",
		})

		s.NoError(s.handler.Login(c))
		s.Equal(http.StatusOK, rec.Code)

		var resp dto.SessionTokenResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("gateway-jwt", resp.AccessToken)
		s.Equal("Bearer", resp.TokenType)
		s.Equal(session.ID.String(), resp.SessionID)
		s.Equal("agent.smith", resp.AgentName)
	})

	s.Run("failed initial directory load is not fatal", func() {
		session := s.newSession()
		workspace := &services.Workspace{
			SessionID: session.ID,
			AgentName: session.AgentName,
			Directory: s.directory,
		}

		s.sessions.EXPECT().
			Login(gomock.Any(), "agent.smith", "hunter2").
			Return(&services.LoginResult{Session: session, UpstreamToken: "upstream-token"}, nil)
		s.manager.EXPECT().Create(session, "upstream-token").Return(workspace)
		s.directory.EXPECT().Load(gomock.Any()).Return(&bankapi.APIError{Op: "accounts", StatusCode: 500})
		s.tokens.EXPECT().GenerateSessionToken(session).Return("gateway-jwt", session.ExpiresAt, nil)

		c, rec := s.newLoginContext(map[string]string{
			"agent_name": "agent.smith",
			"password":   "hunter2",
		})

		s.NoError(s.handler.Login(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("rejected credentials", func() {
		s.sessions.EXPECT().
			Login(gomock.Any(), "agent.smith", "wrong").
			Return(nil, &bankapi.AuthError{Op: "login"})

		c, rec := s.newLoginContext(map[string]string{
			"agent_name": "agent.smith",
			"password":   "wrong",
		})

		s.NoError(s.handler.Login(c))
		s.Equal(http.StatusUnauthorized, rec.Code)

		var errResp ErrorResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &errResp))
		s.Equal("AUTH_001", errResp.Error.Code)
	})

	s.Run("upstream unavailable", func() {
		s.sessions.EXPECT().
			Login(gomock.Any(), "agent.smith", "hunter2").
			Return(nil, bankapi.ErrUpstreamUnavailable)

		c, rec := s.newLoginContext(map[string]string{
			"agent_name": "agent.smith",
			"password":   "hunter2",
		})

		s.NoError(s.handler.Login(c))
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})

	s.Run("missing password is rejected before any upstream call", func() {
		c, _ := s.newLoginContext(map[string]string{
			"agent_name": "agent.smith",
		})

		s.Error(s.handler.Login(c))
	})

	s.Run("token generation failure retires the workspace", func() {
		session := s.newSession()
		workspace := &services.Workspace{
			SessionID: session.ID,
			AgentName: session.AgentName,
			Directory: s.directory,
		}

		s.sessions.EXPECT().
			Login(gomock.Any(), "agent.smith", "hunter2").
			Return(&services.LoginResult{Session: session, UpstreamToken: "upstream-token"}, nil)
		s.manager.EXPECT().Create(session, "upstream-token").Return(workspace)
		s.directory.EXPECT().Load(gomock.Any()).Return(nil)
		s.tokens.EXPECT().
			GenerateSessionToken(session).
			Return("", time.Time{}, services.ErrInvalidToken)
		s.manager.EXPECT().Retire(session.ID)

		c, rec := s.newLoginContext(map[string]string{
			"agent_name": "agent.smith",
			"password":   "hunter2",
		})

		s.NoError(s.handler.Login(c))
		s.Equal(http.StatusInternalServerError, rec.Code)
	})
}

func (s *AuthHandlerSuite) TestLogout() {
	s.Run("revokes session and retires workspace", func() {
		sessionID := uuid.New()

		s.manager.EXPECT().Retire(sessionID)
		s.sessions.EXPECT().Revoke(sessionID).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		rec := httptest.NewRecorder()
		c := s.e.NewContext(req, rec)
		c.Set("session_id", sessionID)

		s.NoError(s.handler.Logout(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("revocation failure still answers 200", func() {
		sessionID := uuid.New()

		s.manager.EXPECT().Retire(sessionID)
		s.sessions.EXPECT().Revoke(sessionID).Return(services.ErrSealedTokenCorrupt)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		rec := httptest.NewRecorder()
		c := s.e.NewContext(req, rec)
		c.Set("session_id", sessionID)

		s.NoError(s.handler.Logout(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("missing session context", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		rec := httptest.NewRecorder()
		c := s.e.NewContext(req, rec)

		s.NoError(s.handler.Logout(c))
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

package services_test

import (
	"context"
	"testing"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/bankapi/bankapi_mocks"
	"bark-console/internal/logging"
	"bark-console/internal/models"
	"bark-console/internal/services"
	"bark-console/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type WorkspaceManagerTestSuite struct {
	suite.Suite
	ctx         context.Context
	ctrl        *gomock.Controller
	baseClient  *bankapi_mocks.MockClientInterface
	boundClient *bankapi_mocks.MockClientInterface
	sessions    *service_mocks.MockSessionServiceInterface
	manager     services.WorkspaceManagerInterface

	capturedCred bankapi.Credential
}

func TestWorkspaceManagerSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceManagerTestSuite))
}

func (s *WorkspaceManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.baseClient = bankapi_mocks.NewMockClientInterface(s.ctrl)
	s.boundClient = bankapi_mocks.NewMockClientInterface(s.ctrl)
	s.sessions = service_mocks.NewMockSessionServiceInterface(s.ctrl)
	s.manager = services.NewWorkspaceManager(s.baseClient, s.sessions, logging.Discard(), relaxedMetrics(s.ctrl))

	s.baseClient.EXPECT().WithCredential(gomock.Any()).DoAndReturn(
		func(cred bankapi.Credential) bankapi.ClientInterface {
			s.capturedCred = cred
			return s.boundClient
		}).AnyTimes()
}

func (s *WorkspaceManagerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *WorkspaceManagerTestSuite) newSession() *models.AgentSession {
	return &models.AgentSession{
		ID:              uuid.New(),
		AgentName:       "agent.smith",
		TokenCiphertext: []byte("sealed"),
		ExpiresAt:       time.Now().UTC().Add(time.Hour),
	}
}

func (s *WorkspaceManagerTestSuite) TestWorkspaceManager_CreateAndGet() {
	session := s.newSession()

	workspace := s.manager.Create(session, "upstream-token")
	s.Require().NotNil(workspace)
	s.Equal(session.ID, workspace.SessionID)
	s.Equal("agent.smith", workspace.AgentName)
	s.Equal(1, s.manager.Count())

	found, ok := s.manager.Get(session.ID)
	s.True(ok)
	s.Same(workspace, found)

	s.Equal("upstream-token", s.capturedCred.Token())
}

func (s *WorkspaceManagerTestSuite) TestWorkspaceManager_Get_Unknown() {
	_, ok := s.manager.Get(uuid.New())
	s.False(ok)
}

func (s *WorkspaceManagerTestSuite) TestWorkspaceManager_Retire() {
	session := s.newSession()
	s.manager.Create(session, "upstream-token")

	s.manager.Retire(session.ID)

	_, ok := s.manager.Get(session.ID)
	s.False(ok)
	s.Equal(0, s.manager.Count())

	// Retiring an unknown or already retired session is harmless.
	s.manager.Retire(session.ID)
}

func (s *WorkspaceManagerTestSuite) TestWorkspaceManager_Start_RunsInitialDirectoryLoad() {
	session := s.newSession()
	workspace := s.manager.Create(session, "upstream-token")

	s.boundClient.EXPECT().Accounts(s.ctx).Return([]models.Account{testAccount("acc-1", "10.00")}, nil)

	s.Require().NoError(workspace.Start(s.ctx))
	s.Len(workspace.Directory.Snapshot().Accounts, 1)
}

// The upstream rejecting the session's token retires the whole workspace:
// the session is revoked and the workspace map forgets it. The shell only
// sees the typed auth error.
func (s *WorkspaceManagerTestSuite) TestWorkspaceManager_UpstreamRejectionRetiresWorkspace() {
	session := s.newSession()
	s.manager.Create(session, "upstream-token")

	s.sessions.EXPECT().RevokeOnAuthFailure(session.ID).Return(nil).Times(1)

	s.capturedCred.Invalidate()

	_, ok := s.manager.Get(session.ID)
	s.False(ok)

	// The callback is one-shot even if a burst of in-flight requests all
	// come back 401.
	s.capturedCred.Invalidate()
}

package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/models"

	"github.com/google/uuid"
)

// Workspace is the composition root for one signed-in agent: a bank client
// bound to the session's token plus the stateful services hanging off it.
// All dashboard state for the session lives here and dies with it.
type Workspace struct {
	SessionID uuid.UUID
	AgentName string

	Client    bankapi.ClientInterface
	Directory DirectoryServiceInterface
	Selection SelectionServiceInterface
	Transfers TransferServiceInterface
	Creator   AccountCreationServiceInterface

	createdAt time.Time
}

// Start runs the workspace's startup hook: the initial directory load. A
// failed initial load is not fatal; the workspace starts with an empty
// snapshot and the recorded error.
func (w *Workspace) Start(ctx context.Context) error {
	return w.Directory.Load(ctx)
}

// CreatedAt reports when the workspace was built.
func (w *Workspace) CreatedAt() time.Time {
	return w.createdAt
}

// sessionCredential carries one session's upstream token into the bank
// client. Invalidate fires when the upstream answers 401; the manager then
// retires the whole workspace.
type sessionCredential struct {
	token      string
	onInvalid  func()
	invalidate sync.Once
}

func (c *sessionCredential) Token() string {
	return c.token
}

func (c *sessionCredential) Invalidate() {
	c.invalidate.Do(func() {
		if c.onInvalid != nil {
			c.onInvalid()
		}
	})
}

// WorkspaceManager owns the live session-to-workspace map. Workspaces are
// created at login and retired at logout or when the upstream rejects the
// session's token.
type WorkspaceManager struct {
	baseClient bankapi.ClientInterface
	sessions   SessionServiceInterface
	logger     *slog.Logger
	metrics    MetricsRecorderInterface

	mu   sync.RWMutex
	byID map[uuid.UUID]*Workspace
}

// NewWorkspaceManager creates the manager. baseClient is the unbound bank
// client that session-bound clients are derived from.
func NewWorkspaceManager(
	baseClient bankapi.ClientInterface,
	sessions SessionServiceInterface,
	logger *slog.Logger,
	metrics MetricsRecorderInterface,
) WorkspaceManagerInterface {
	return &WorkspaceManager{
		baseClient: baseClient,
		sessions:   sessions,
		logger:     logger,
		metrics:    metrics,
		byID:       make(map[uuid.UUID]*Workspace),
	}
}

// Create builds and registers a workspace for a freshly resolved session.
// Creating again for the same session replaces the previous workspace.
func (m *WorkspaceManager) Create(session *models.AgentSession, upstreamToken string) *Workspace {
	sessionID := session.ID

	cred := &sessionCredential{
		token: upstreamToken,
		onInvalid: func() {
			m.retireForAuthFailure(sessionID)
		},
	}

	client := m.baseClient.WithCredential(cred)
	logger := m.logger.With("session_id", sessionID.String())

	directory := NewDirectoryService(client, logger, m.metrics)
	selection := NewSelectionService(client, logger, m.metrics)

	workspace := &Workspace{
		SessionID: sessionID,
		AgentName: session.AgentName,
		Client:    client,
		Directory: directory,
		Selection: selection,
		Transfers: NewTransferService(client, directory, selection, logger, m.metrics),
		Creator:   NewAccountCreationService(client, directory, logger, m.metrics),
		createdAt: time.Now(),
	}

	m.mu.Lock()
	m.byID[sessionID] = workspace
	count := len(m.byID)
	m.mu.Unlock()

	m.metrics.RecordGauge("active_workspaces", float64(count), nil)
	return workspace
}

func (m *WorkspaceManager) Get(sessionID uuid.UUID) (*Workspace, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	workspace, ok := m.byID[sessionID]
	return workspace, ok
}

// Retire drops the workspace and clears its selection. Safe to call for
// unknown ids.
func (m *WorkspaceManager) Retire(sessionID uuid.UUID) {
	m.mu.Lock()
	workspace, ok := m.byID[sessionID]
	if ok {
		delete(m.byID, sessionID)
	}
	count := len(m.byID)
	m.mu.Unlock()

	if ok {
		workspace.Selection.Deselect()
	}

	m.metrics.RecordGauge("active_workspaces", float64(count), nil)
}

func (m *WorkspaceManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// retireForAuthFailure tears a workspace down after the upstream rejected its
// token: the session is revoked so the gateway JWT dies with it.
func (m *WorkspaceManager) retireForAuthFailure(sessionID uuid.UUID) {
	m.Retire(sessionID)

	if err := m.sessions.RevokeOnAuthFailure(sessionID); err != nil {
		m.logger.Error("failed to revoke session after upstream rejection",
			"session_id", sessionID, "error", err.Error())
	}
}

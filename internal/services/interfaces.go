package services

import (
	"context"
	"time"

	"bark-console/internal/models"

	"github.com/google/uuid"
)

// MetricsRecorderInterface defines the contract for recording metrics
type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

// DirectorySnapshot is the read model of the account directory: the accounts
// in server order plus the load state the shell renders alongside them.
type DirectorySnapshot struct {
	Accounts  []models.Account `json:"accounts"`
	Loading   bool             `json:"loading"`
	LastError string           `json:"last_error,omitempty"`
	LoadedAt  time.Time        `json:"loaded_at,omitempty"`
}

// DirectoryServiceInterface maintains the workspace's snapshot of upstream
// accounts
type DirectoryServiceInterface interface {
	// Load replaces the whole snapshot from upstream. On failure the previous
	// snapshot is preserved and the error is also recorded for display.
	Load(ctx context.Context) error

	// RefreshOne re-fetches a single account and replaces it in place. An id
	// not present in the snapshot leaves the snapshot unchanged.
	RefreshOne(ctx context.Context, accountID string) error

	Snapshot() DirectorySnapshot
	Get(accountID string) (models.Account, bool)
}

// Selection is the detail view of the currently selected account: a fresh
// upstream read plus its recent transfers.
type Selection struct {
	Account    models.Account    `json:"account"`
	Transfers  []models.Transfer `json:"transfers"`
	SelectedAt time.Time         `json:"selected_at"`
}

// SelectionState is the selection plus its load flag for rendering.
type SelectionState struct {
	Selection *Selection `json:"selection,omitempty"`
	Loading   bool       `json:"loading"`
}

// SelectionServiceInterface owns the single selected account per workspace
type SelectionServiceInterface interface {
	// Select fetches fresh detail and recent transfers for the account. When
	// selects race, the one that completes last against the newest request
	// wins; completions for superseded requests are discarded and reported as
	// ErrSelectionSuperseded.
	Select(ctx context.Context, accountID string) error

	// Deselect clears the selection. Idempotent; also invalidates any
	// in-flight Select.
	Deselect()

	// ReconcileAfterMutation re-runs Select for the current account, if any.
	ReconcileAfterMutation(ctx context.Context) error

	Current() *Selection
	State() SelectionState
}

// TransferRequest carries the raw user input for a transfer from the selected
// account. Validation happens in the service, before any network I/O.
type TransferRequest struct {
	ToAccountNumber string
	Amount          string
}

// TransferResult reports a completed submission. RefreshFailed is set when
// the transfer succeeded upstream but the follow-up directory/selection
// refresh did not; the success stands either way.
type TransferResult struct {
	Transfer      *models.Transfer
	RefreshFailed bool
}

// TransferServiceInterface submits transfers sourced from the current
// selection
type TransferServiceInterface interface {
	Submit(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

// AccountCreationRequest carries the raw user input for opening an account.
type AccountCreationRequest struct {
	UserID         string
	AccountNumber  string
	InitialDeposit string
}

// AccountCreationServiceInterface opens accounts for known bank customers
type AccountCreationServiceInterface interface {
	// Users returns the customer list, fetched upstream once per workspace
	// and cached.
	Users(ctx context.Context) ([]models.User, error)

	Create(ctx context.Context, req AccountCreationRequest) (*models.Account, error)
}

// LoginResult is what a successful sign-in produces: the persisted session
// and the plaintext upstream token for binding the workspace's client. The
// plaintext is never stored.
type LoginResult struct {
	Session       *models.AgentSession
	UpstreamToken string
}

// ResolvedSession is an active session with its upstream token unsealed.
type ResolvedSession struct {
	Session       *models.AgentSession
	UpstreamToken string
}

// SessionServiceInterface manages agent sessions and their sealed upstream
// credentials
type SessionServiceInterface interface {
	Login(ctx context.Context, agentName, password string) (*LoginResult, error)
	Resolve(sessionID uuid.UUID) (*ResolvedSession, error)
	Revoke(sessionID uuid.UUID) error

	// RevokeOnAuthFailure revokes a session after the upstream rejected its
	// token. Split from Revoke so the auth path can be observed separately.
	RevokeOnAuthFailure(sessionID uuid.UUID) error
}

// TokenServiceInterface issues and validates the gateway's own session JWTs
type TokenServiceInterface interface {
	GenerateSessionToken(session *models.AgentSession) (string, time.Time, error)
	ValidateSessionToken(tokenString string) (*models.SessionClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
}

// WorkspaceManagerInterface maps live agent sessions to their workspaces
type WorkspaceManagerInterface interface {
	Create(session *models.AgentSession, upstreamToken string) *Workspace
	Get(sessionID uuid.UUID) (*Workspace, bool)
	Retire(sessionID uuid.UUID)
	Count() int
}

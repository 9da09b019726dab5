package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/models"
)

// DirectoryService holds one workspace's snapshot of the upstream account
// list. The upstream ledger is the only source of truth; the snapshot is a
// cache that is only ever replaced wholesale (Load) or entry-by-entry
// (RefreshOne) from server responses, never edited locally.
type DirectoryService struct {
	client  bankapi.ClientInterface
	logger  *slog.Logger
	metrics MetricsRecorderInterface

	mu        sync.RWMutex
	accounts  []models.Account
	loading   int
	lastError string
	loadedAt  time.Time
}

// NewDirectoryService creates a directory bound to a session's bank client
func NewDirectoryService(client bankapi.ClientInterface, logger *slog.Logger, metrics MetricsRecorderInterface) DirectoryServiceInterface {
	return &DirectoryService{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

// Load fetches the full account list and replaces the snapshot atomically.
// The loading flag is held for exactly the duration of the call. On failure
// the previous snapshot survives and the error is recorded for display.
func (d *DirectoryService) Load(ctx context.Context) error {
	d.acquireLoading()
	defer d.releaseLoading()

	accounts, err := d.client.Accounts(ctx)
	if err != nil {
		d.mu.Lock()
		d.lastError = displayError(err, "Failed to load accounts")
		d.mu.Unlock()

		d.metrics.IncrementCounter("directory_load", map[string]string{"status": "failed"})
		d.logger.Warn("account directory load failed", "error", err.Error())
		return err
	}

	d.mu.Lock()
	d.accounts = accounts
	d.lastError = ""
	d.loadedAt = time.Now()
	d.mu.Unlock()

	d.metrics.IncrementCounter("directory_load", map[string]string{"status": "ok"})
	d.logger.Debug("account directory loaded", "count", len(accounts))
	return nil
}

// RefreshOne re-fetches a single account and swaps it into the snapshot by
// id. An id the snapshot does not contain leaves the snapshot unchanged;
// this is a refresh primitive, not an upsert.
func (d *DirectoryService) RefreshOne(ctx context.Context, accountID string) error {
	d.acquireLoading()
	defer d.releaseLoading()

	account, err := d.client.Account(ctx, accountID)
	if err != nil {
		d.metrics.IncrementCounter("directory_load", map[string]string{"status": "refresh_failed"})
		d.logger.Warn("account refresh failed", "account_id", accountID, "error", err.Error())
		return err
	}

	d.mu.Lock()
	for i := range d.accounts {
		if d.accounts[i].ID == account.ID {
			d.accounts[i] = *account
			break
		}
	}
	d.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the directory state for rendering.
func (d *DirectoryService) Snapshot() DirectorySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	accounts := make([]models.Account, len(d.accounts))
	copy(accounts, d.accounts)

	return DirectorySnapshot{
		Accounts:  accounts,
		Loading:   d.loading > 0,
		LastError: d.lastError,
		LoadedAt:  d.loadedAt,
	}
}

// Get looks an account up in the snapshot by id.
func (d *DirectoryService) Get(accountID string) (models.Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.accounts {
		if d.accounts[i].ID == accountID {
			return d.accounts[i], true
		}
	}

	return models.Account{}, false
}

func (d *DirectoryService) acquireLoading() {
	d.mu.Lock()
	d.loading++
	d.mu.Unlock()
}

func (d *DirectoryService) releaseLoading() {
	d.mu.Lock()
	d.loading--
	d.mu.Unlock()
}

// displayError picks the upstream-provided detail when there is one, else the
// generic fallback. Raw transport errors are never shown to agents.
func displayError(err error, fallback string) string {
	if detail := bankapi.UpstreamDetail(err); detail != "" {
		return detail
	}
	return fallback
}

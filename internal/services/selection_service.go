package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/models"
)

// ErrSelectionSuperseded reports that a Select completed after a newer Select
// or Deselect was issued. The completion is discarded; the newer request owns
// the selection.
var ErrSelectionSuperseded = errors.New("selection was superseded by a newer request")

// SelectionService owns the single selected account of a workspace. Selecting
// always re-reads the account upstream rather than trusting the snapshot's
// cached balance, and pulls the account's recent transfers in the same
// operation.
//
// Races between overlapping selects are settled by generation: each request
// takes the next generation number, and only a completion still carrying the
// newest generation may commit. The account selected last wins regardless of
// which response arrives first.
type SelectionService struct {
	client  bankapi.ClientInterface
	logger  *slog.Logger
	metrics MetricsRecorderInterface

	mu      sync.RWMutex
	gen     uint64
	loading int
	current *Selection
}

// NewSelectionService creates a selection controller bound to a session's
// bank client
func NewSelectionService(client bankapi.ClientInterface, logger *slog.Logger, metrics MetricsRecorderInterface) SelectionServiceInterface {
	return &SelectionService{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *SelectionService) Select(ctx context.Context, accountID string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}()

	account, err := s.client.Account(ctx, accountID)
	if err != nil {
		s.metrics.IncrementCounter("selection_select", map[string]string{"status": "failed"})
		s.logger.Warn("selection detail fetch failed", "account_id", accountID, "error", err.Error())
		return err
	}

	transfers, err := s.client.Transfers(ctx, accountID, models.RecentTransferWindow)
	if err != nil {
		s.metrics.IncrementCounter("selection_select", map[string]string{"status": "failed"})
		s.logger.Warn("selection transfers fetch failed", "account_id", accountID, "error", err.Error())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.metrics.IncrementCounter("selection_select", map[string]string{"status": "stale"})
		s.logger.Debug("discarding stale selection completion", "account_id", accountID)
		return ErrSelectionSuperseded
	}

	s.current = &Selection{
		Account:    *account,
		Transfers:  transfers,
		SelectedAt: time.Now(),
	}

	s.metrics.IncrementCounter("selection_select", map[string]string{"status": "ok"})
	return nil
}

// Deselect clears the selection and invalidates any in-flight Select.
// Idempotent.
func (s *SelectionService) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.current = nil
}

// ReconcileAfterMutation re-selects the current account so its balance and
// transfer list reflect a mutation that just went through. A superseded
// completion is not an error here; whoever superseded us owns the selection.
func (s *SelectionService) ReconcileAfterMutation(ctx context.Context) error {
	current := s.Current()
	if current == nil {
		return nil
	}

	err := s.Select(ctx, current.Account.ID)
	if errors.Is(err, ErrSelectionSuperseded) {
		return nil
	}
	return err
}

// Current returns a copy of the selection, or nil when nothing is selected.
func (s *SelectionService) Current() *Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.copyCurrentLocked()
}

// State returns the selection plus its loading flag for rendering.
func (s *SelectionService) State() SelectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SelectionState{
		Selection: s.copyCurrentLocked(),
		Loading:   s.loading > 0,
	}
}

func (s *SelectionService) copyCurrentLocked() *Selection {
	if s.current == nil {
		return nil
	}

	transfers := make([]models.Transfer, len(s.current.Transfers))
	copy(transfers, s.current.Transfers)

	return &Selection{
		Account:    s.current.Account,
		Transfers:  transfers,
		SelectedAt: s.current.SelectedAt,
	}
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/models"
)

var (
	ErrNoSelection       = errors.New("no account is selected")
	ErrSameAccount       = errors.New("destination must differ from the source account")
	ErrInsufficientFunds = errors.New("amount exceeds the selected account's balance")
)

// TransferService submits transfers whose source is the currently selected
// account. Every validation runs before any network I/O and fails with a
// specific error; the upstream ledger still has the final word (the displayed
// balance check is advisory).
type TransferService struct {
	client    bankapi.ClientInterface
	directory DirectoryServiceInterface
	selection SelectionServiceInterface
	logger    *slog.Logger
	metrics   MetricsRecorderInterface
}

// NewTransferService creates a transfer submitter for one workspace
func NewTransferService(
	client bankapi.ClientInterface,
	directory DirectoryServiceInterface,
	selection SelectionServiceInterface,
	logger *slog.Logger,
	metrics MetricsRecorderInterface,
) TransferServiceInterface {
	return &TransferService{
		client:    client,
		directory: directory,
		selection: selection,
		logger:    logger,
		metrics:   metrics,
	}
}

func (t *TransferService) Submit(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	start := time.Now()

	selection := t.selection.Current()
	if selection == nil {
		t.countFailure("validation_failed")
		return nil, ErrNoSelection
	}

	amount, err := models.ParseAmount(req.Amount)
	if err != nil {
		t.countFailure("validation_failed")
		return nil, err
	}

	destination, err := models.NormalizeAccountNumber(req.ToAccountNumber)
	if err != nil {
		t.countFailure("validation_failed")
		return nil, err
	}

	if destination == selection.Account.AccountNumber {
		t.countFailure("validation_failed")
		return nil, ErrSameAccount
	}

	if !selection.Account.CanCover(amount) {
		t.countFailure("validation_failed")
		return nil, ErrInsufficientFunds
	}

	transfer, err := t.client.CreateTransfer(ctx, bankapi.CreateTransferRequest{
		FromAccountNumber: selection.Account.AccountNumber,
		ToAccountNumber:   destination,
		Amount:            amount,
	})
	if err != nil {
		t.countFailure("failed")
		t.metrics.RecordProcessingTime("transfer_duration", time.Since(start))
		return nil, err
	}

	// The money already moved; a failed follow-up refresh is logged but never
	// downgrades the result.
	refreshFailed := false
	if err := t.directory.Load(ctx); err != nil {
		refreshFailed = true
		t.logger.Warn("post-transfer directory refresh failed", "error", err.Error())
	}
	if err := t.selection.ReconcileAfterMutation(ctx); err != nil {
		refreshFailed = true
		t.logger.Warn("post-transfer selection reconcile failed", "error", err.Error())
	}

	t.metrics.IncrementCounter("transfers_total", map[string]string{"status": "success"})
	t.metrics.RecordProcessingTime("transfer_duration", time.Since(start))
	t.logger.Info("transfer submitted",
		"transfer_id", transfer.ID,
		"from_account", models.MaskAccountNumber(transfer.FromAccount),
		"to_account", models.MaskAccountNumber(transfer.ToAccount),
		"refresh_failed", refreshFailed,
	)

	return &TransferResult{
		Transfer:      transfer,
		RefreshFailed: refreshFailed,
	}, nil
}

func (t *TransferService) countFailure(status string) {
	t.metrics.IncrementCounter("transfers_total", map[string]string{"status": status})
}

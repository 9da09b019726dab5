package services_test

import (
	"context"
	"testing"

	"bark-console/internal/bankapi"
	"bark-console/internal/bankapi/bankapi_mocks"
	"bark-console/internal/logging"
	"bark-console/internal/models"
	"bark-console/internal/services"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SelectionServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	client    *bankapi_mocks.MockClientInterface
	selection services.SelectionServiceInterface
}

func TestSelectionServiceSuite(t *testing.T) {
	suite.Run(t, new(SelectionServiceTestSuite))
}

func (s *SelectionServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.client = bankapi_mocks.NewMockClientInterface(s.ctrl)
	s.selection = services.NewSelectionService(s.client, logging.Discard(), relaxedMetrics(s.ctrl))
}

func (s *SelectionServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SelectionServiceTestSuite) expectSelect(account models.Account, transfers []models.Transfer) {
	s.client.EXPECT().Account(gomock.Any(), account.ID).Return(&account, nil)
	s.client.EXPECT().Transfers(gomock.Any(), account.ID, models.RecentTransferWindow).Return(transfers, nil)
}

func (s *SelectionServiceTestSuite) TestSelectionService_Select_FetchesFreshDetailAndTransfers() {
	account := testAccount("acc-1", "100.00")
	transfers := []models.Transfer{testTransfer(account.AccountNumber, "9999888877776666", "10.00")}
	s.expectSelect(account, transfers)

	s.Require().NoError(s.selection.Select(s.ctx, "acc-1"))

	current := s.selection.Current()
	s.Require().NotNil(current)
	s.Equal("acc-1", current.Account.ID)
	s.Len(current.Transfers, 1)
	s.False(current.SelectedAt.IsZero())
}

func (s *SelectionServiceTestSuite) TestSelectionService_Select_DetailFailurePreservesPrevious() {
	account := testAccount("acc-1", "100.00")
	s.expectSelect(account, nil)
	s.Require().NoError(s.selection.Select(s.ctx, "acc-1"))

	s.client.EXPECT().Account(gomock.Any(), "acc-2").Return(nil, &bankapi.APIError{Op: "get_account", StatusCode: 500})

	err := s.selection.Select(s.ctx, "acc-2")
	s.Error(err)

	current := s.selection.Current()
	s.Require().NotNil(current)
	s.Equal("acc-1", current.Account.ID)
}

func (s *SelectionServiceTestSuite) TestSelectionService_Select_TransfersFailurePreservesPrevious() {
	account := testAccount("acc-1", "100.00")
	s.expectSelect(account, nil)
	s.Require().NoError(s.selection.Select(s.ctx, "acc-1"))

	other := testAccount("acc-2", "50.00")
	s.client.EXPECT().Account(gomock.Any(), "acc-2").Return(&other, nil)
	s.client.EXPECT().Transfers(gomock.Any(), "acc-2", models.RecentTransferWindow).
		Return(nil, &bankapi.APIError{Op: "list_transfers", StatusCode: 500})

	err := s.selection.Select(s.ctx, "acc-2")
	s.Error(err)
	s.Equal("acc-1", s.selection.Current().Account.ID)
}

// Select A, then select B while A's detail fetch is still in flight. B
// completes first; A's late completion must be discarded even though it
// arrives last.
func (s *SelectionServiceTestSuite) TestSelectionService_Select_LaterRequestWinsOverEarlierCompletion() {
	accountA := testAccount("acc-a", "10.00")
	accountB := testAccount("acc-b", "20.00")

	aStarted := make(chan struct{})
	releaseA := make(chan struct{})

	s.client.EXPECT().Account(gomock.Any(), "acc-a").DoAndReturn(
		func(context.Context, string) (*models.Account, error) {
			close(aStarted)
			<-releaseA
			return &accountA, nil
		})
	s.client.EXPECT().Transfers(gomock.Any(), "acc-a", models.RecentTransferWindow).Return(nil, nil)
	s.expectSelect(accountB, nil)

	done := make(chan error, 1)
	go func() {
		done <- s.selection.Select(s.ctx, "acc-a")
	}()

	<-aStarted
	s.Require().NoError(s.selection.Select(s.ctx, "acc-b"))

	close(releaseA)
	s.ErrorIs(<-done, services.ErrSelectionSuperseded)

	current := s.selection.Current()
	s.Require().NotNil(current)
	s.Equal("acc-b", current.Account.ID)
}

func (s *SelectionServiceTestSuite) TestSelectionService_Deselect_InvalidatesInFlightSelect() {
	account := testAccount("acc-a", "10.00")

	aStarted := make(chan struct{})
	releaseA := make(chan struct{})

	s.client.EXPECT().Account(gomock.Any(), "acc-a").DoAndReturn(
		func(context.Context, string) (*models.Account, error) {
			close(aStarted)
			<-releaseA
			return &account, nil
		})
	s.client.EXPECT().Transfers(gomock.Any(), "acc-a", models.RecentTransferWindow).Return(nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- s.selection.Select(s.ctx, "acc-a")
	}()

	<-aStarted
	s.selection.Deselect()

	close(releaseA)
	s.ErrorIs(<-done, services.ErrSelectionSuperseded)
	s.Nil(s.selection.Current())
}

func (s *SelectionServiceTestSuite) TestSelectionService_Deselect_Idempotent() {
	s.selection.Deselect()
	s.selection.Deselect()
	s.Nil(s.selection.Current())
}

func (s *SelectionServiceTestSuite) TestSelectionService_ReconcileAfterMutation_RefreshesCurrent() {
	account := testAccount("acc-1", "100.00")
	s.expectSelect(account, nil)
	s.Require().NoError(s.selection.Select(s.ctx, "acc-1"))

	refreshed := account
	refreshed.Balance = decimal.Zero
	transfers := []models.Transfer{testTransfer(account.AccountNumber, "9999888877776666", "100.00")}
	s.expectSelect(refreshed, transfers)

	s.Require().NoError(s.selection.ReconcileAfterMutation(s.ctx))

	current := s.selection.Current()
	s.Require().NotNil(current)
	s.True(current.Account.Balance.IsZero())
	s.Len(current.Transfers, 1)
}

func (s *SelectionServiceTestSuite) TestSelectionService_ReconcileAfterMutation_NoSelectionIsNoop() {
	s.NoError(s.selection.ReconcileAfterMutation(s.ctx))
}

func (s *SelectionServiceTestSuite) TestSelectionService_State_LoadingFlagDuringSelect() {
	account := testAccount("acc-1", "100.00")
	s.client.EXPECT().Account(gomock.Any(), "acc-1").DoAndReturn(
		func(context.Context, string) (*models.Account, error) {
			s.True(s.selection.State().Loading)
			return &account, nil
		})
	s.client.EXPECT().Transfers(gomock.Any(), "acc-1", models.RecentTransferWindow).Return(nil, nil)

	s.Require().NoError(s.selection.Select(s.ctx, "acc-1"))
	s.False(s.selection.State().Loading)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/dto"
	"bark-console/internal/models"
	"bark-console/internal/services"
	"bark-console/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestSelectionHandler(t *testing.T) {
	suite.Run(t, new(SelectionHandlerSuite))
}

type SelectionHandlerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	selection *service_mocks.MockSelectionServiceInterface
	workspace *services.Workspace
	handler   *SelectionHandler
	e         *echo.Echo
}

func (s *SelectionHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.selection = service_mocks.NewMockSelectionServiceInterface(s.ctrl)
	s.workspace = &services.Workspace{Selection: s.selection}
	s.handler = NewSelectionHandler()
	s.e = echo.New()
}

func (s *SelectionHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SelectionHandlerSuite) newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "trace-selection-test")
	c.Set(WorkspaceContextKey, s.workspace)
	return c, rec
}

func (s *SelectionHandlerSuite) selectedState() services.SelectionState {
	return services.SelectionState{
		Selection: &services.Selection{
			Account: models.Account{
				ID:            "acc-1",
				AccountNumber: "1111222233334444",
				Balance:       decimal.RequireFromString("250.00"),
			},
			Transfers: []models.Transfer{
				{ID: "tr-1", FromAccount: "1111222233334444", ToAccount: "5555666677778888",
					Amount: decimal.RequireFromString("10.00")},
			},
			SelectedAt: time.Now().UTC(),
		},
	}
}

func (s *SelectionHandlerSuite) TestState() {
	s.Run("empty selection is a normal 200", func() {
		s.selection.EXPECT().State().Return(services.SelectionState{})

		c, rec := s.newContext(http.MethodGet, "/api/selection")

		s.NoError(s.handler.State(c))
		s.Equal(http.StatusOK, rec.Code)

		var resp dto.SelectionResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.False(resp.Selected)
		s.Nil(resp.Account)
	})

	s.Run("selected account with recent transfers", func() {
		s.selection.EXPECT().State().Return(s.selectedState())

		c, rec := s.newContext(http.MethodGet, "/api/selection")

		s.NoError(s.handler.State(c))
		s.Equal(http.StatusOK, rec.Code)

		var resp dto.SelectionResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.True(resp.Selected)
		s.Equal("acc-1", resp.Account.ID)
		s.Len(resp.Transfers, 1)
	})
}

func (s *SelectionHandlerSuite) TestSelect() {
	s.Run("selects and returns the detail view", func() {
		s.selection.EXPECT().Select(gomock.Any(), "acc-1").Return(nil)
		s.selection.EXPECT().State().Return(s.selectedState())

		c, rec := s.newContext(http.MethodPut, "/api/selection/acc-1")
		c.SetParamNames("accountId")
		c.SetParamValues("acc-1")

		s.NoError(s.handler.Select(c))
		s.Equal(http.StatusOK, rec.Code)

		var resp dto.SelectionResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.True(resp.Selected)
		s.Equal("acc-1", resp.Account.ID)
	})

	s.Run("superseded select answers with the winning selection", func() {
		s.selection.EXPECT().Select(gomock.Any(), "acc-old").Return(services.ErrSelectionSuperseded)
		s.selection.EXPECT().State().Return(s.selectedState())

		c, rec := s.newContext(http.MethodPut, "/api/selection/acc-old")
		c.SetParamNames("accountId")
		c.SetParamValues("acc-old")

		s.NoError(s.handler.Select(c))
		s.Equal(http.StatusOK, rec.Code)

		var resp dto.SelectionResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("acc-1", resp.Account.ID)
	})

	s.Run("upstream failure", func() {
		s.selection.EXPECT().
			Select(gomock.Any(), "acc-1").
			Return(&bankapi.APIError{Op: "account", StatusCode: 500, Detail: "Ledger offline"})

		c, rec := s.newContext(http.MethodPut, "/api/selection/acc-1")
		c.SetParamNames("accountId")
		c.SetParamValues("acc-1")

		s.NoError(s.handler.Select(c))
		s.Equal(http.StatusBadGateway, rec.Code)
	})

	s.Run("missing account id", func() {
		c, rec := s.newContext(http.MethodPut, "/api/selection/")

		s.NoError(s.handler.Select(c))
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *SelectionHandlerSuite) TestDeselect() {
	s.selection.EXPECT().Deselect()

	c, rec := s.newContext(http.MethodDelete, "/api/selection")

	s.NoError(s.handler.Deselect(c))
	s.Equal(http.StatusOK, rec.Code)
}

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
	"bark-console/internal/models"
	"bark-console/internal/services"
	"bark-console/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestTransferHandler(t *testing.T) {
	suite.Run(t, new(TransferHandlerSuite))
}

type TransferHandlerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	transfers *service_mocks.MockTransferServiceInterface
	workspace *services.Workspace
	handler   *TransferHandler
	e         *echo.Echo
}

func (s *TransferHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.transfers = service_mocks.NewMockTransferServiceInterface(s.ctrl)
	s.workspace = &services.Workspace{Transfers: s.transfers}
	s.handler = NewTransferHandler()
	s.e = echo.New()
	s.e.Validator = NewValidator()
}

func (s *TransferHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *TransferHandlerSuite) newContext(body map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/transfers", bytes.NewBuffer(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "trace-transfer-test")
	c.Set(WorkspaceContextKey, s.workspace)
	return c, rec
}

func (s *TransferHandlerSuite) validBody() map[string]string {
	return map[string]string{
		"to_account_number": "5555 6666 7777 8888",
		"amount":            "25.00",
	}
}

func (s *TransferHandlerSuite) TestSubmit() {
	s.Run("submits the transfer", func() {
		transfer := &models.Transfer{
			ID:          "tr-1",
			FromAccount: "1111222233334444",
			ToAccount:   "5555666677778888",
			Amount:      decimal.RequireFromString("25.00"),
			Timestamp:   time.Now().UTC(),
		}

		s.transfers.EXPECT().
			Submit(gomock.Any(), services.TransferRequest{
				ToAccountNumber: "5555 6666 7777 8888",
				Amount:          "25.00",
			}).
			Return(&services.TransferResult{Transfer: transfer}, nil)

		c, rec := s.newContext(s.validBody())

		s.NoError(s.handler.Submit(c))
		s.Equal(http.StatusCreated, rec.Code)

		var resp dto.TransferResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("tr-1", resp.Transfer.ID)
		s.False(resp.RefreshDeferred)
	})

	s.Run("deferred refresh is flagged but the transfer still succeeds", func() {
		transfer := &models.Transfer{ID: "tr-2", Amount: decimal.RequireFromString("25.00")}

		s.transfers.EXPECT().
			Submit(gomock.Any(), gomock.Any()).
			Return(&services.TransferResult{Transfer: transfer, RefreshFailed: true}, nil)

		c, rec := s.newContext(s.validBody())

		s.NoError(s.handler.Submit(c))
		s.Equal(http.StatusCreated, rec.Code)

		var resp dto.TransferResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.True(resp.RefreshDeferred)
	})

	s.Run("no selection", func() {
		s.transfers.EXPECT().
			Submit(gomock.Any(), gomock.Any()).
			Return(nil, services.ErrNoSelection)

		c, rec := s.newContext(s.validBody())

		s.NoError(s.handler.Submit(c))
		s.Equal(http.StatusBadRequest, rec.Code)

		var errResp ErrorResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &errResp))
		s.Equal("VALIDATION_006", errResp.Error.Code)
	})

	s.Run("destination equals source", func() {
		s.transfers.EXPECT().
			Submit(gomock.Any(), gomock.Any()).
			Return(nil, services.ErrSameAccount)

		c, rec := s.newContext(s.validBody())

		s.NoError(s.handler.Submit(c))
		s.Equal(http.StatusBadRequest, rec.Code)

		var errResp ErrorResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &errResp))
		s.Equal("VALIDATION_007", errResp.Error.Code)
	})

	s.Run("insufficient displayed funds", func() {
		s.transfers.EXPECT().
			Submit(gomock.Any(), gomock.Any()).
			Return(nil, services.ErrInsufficientFunds)

		c, rec := s.newContext(s.validBody())

		s.NoError(s.handler.Submit(c))
		s.Equal(http.StatusUnprocessableEntity, rec.Code)

		var errResp ErrorResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &errResp))
		s.Equal("VALIDATION_005", errResp.Error.Code)
	})

	s.Run("malformed amount never reaches the service", func() {
		body := s.validBody()
		body["amount"] = "12.345"

		c, _ := s.newContext(body)

		s.Error(s.handler.Submit(c))
	})

	s.Run("upstream rejection carries the server detail", func() {
		s.transfers.EXPECT().
			Submit(gomock.Any(), gomock.Any()).
			Return(nil, &bankapi.APIError{Op: "create_transfer", StatusCode: 400, Detail: "Insufficient funds"})

		c, rec := s.newContext(s.validBody())

		s.NoError(s.handler.Submit(c))
		s.Equal(http.StatusBadGateway, rec.Code)

		var errResp ErrorResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &errResp))
		s.Contains(errResp.Error.Details, "Insufficient funds")
	})

	s.Run("session rejected upstream mid-flight", func() {
		s.transfers.EXPECT().
			Submit(gomock.Any(), gomock.Any()).
			Return(nil, &bankapi.AuthError{Op: "create_transfer"})

		c, rec := s.newContext(s.validBody())

		s.NoError(s.handler.Submit(c))
		s.Equal(http.StatusUnauthorized, rec.Code)

		var errResp ErrorResponse
		s.NoError(json.Unmarshal(rec.Body.Bytes(), &errResp))
		s.Equal("AUTH_006", errResp.Error.Code)
	})
}

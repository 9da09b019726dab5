package bankapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bark-console/internal/logging"
)

type fakeCredential struct {
	token       string
	invalidated atomic.Int32
}

func (f *fakeCredential) Token() string { return f.token }

func (f *fakeCredential) Invalidate() { f.invalidated.Add(1) }

func newTestClient(t *testing.T, handler http.Handler) (ClientInterface, *fakeCredential, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cred := &fakeCredential{token: "upstream-token"}
	client := NewClient(server.URL, 5*time.Second, logging.Discard(), NopMetrics())
	return client.WithCredential(cred), cred, server
}

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantToken string
		wantAuth  bool
		wantErr   bool
	}{
		{
			name:      "successful login returns token",
			status:    http.StatusOK,
			body:      `{"token": "issued-token"}`,
			wantToken: "issued-token",
		},
		{
			name:     "rejected credentials return auth error",
			status:   http.StatusUnauthorized,
			body:     `{"detail": "Invalid credentials"}`,
			wantAuth: true,
			wantErr:  true,
		},
		{
			name:    "empty token is an upstream error",
			status:  http.StatusOK,
			body:    `{"token": ""}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/token", r.URL.Path)
				assert.Empty(t, r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			client, _, _ := newTestClient(t, handler)

			token, err := client.Login(context.Background(), "agent", "secret")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantAuth, IsAuthError(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestClient_Accounts(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "Bearer upstream-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(TraceIDHeader))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "acc-1", "user": "user-1", "name": "Checking", "account_number": "1111222233334444", "balance": "125.50", "created_at": "2026-08-01T10:00:00Z"},
			{"id": "acc-2", "user": "user-1", "name": "Savings", "account_number": "5555666677778888", "balance": "0", "created_at": "2026-08-02T10:00:00Z"}
		]`))
	})

	client, _, _ := newTestClient(t, handler)

	accounts, err := client.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "acc-1", accounts[0].ID)
	assert.Equal(t, "Checking", accounts[0].Name)
	assert.True(t, accounts[0].Balance.Equal(decimal.NewFromFloat(125.50)))
}

func TestClient_Transfers_CapsToWindow(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acc-1/transfers", r.URL.Path)
		w.Write([]byte(`[
			{"id": "t-1", "from_account": "1111222233334444", "to_account": "5555666677778888", "amount": "10.00", "timestamp": "2026-08-05T10:00:00Z"},
			{"id": "t-2", "from_account": "1111222233334444", "to_account": "5555666677778888", "amount": "20.00", "timestamp": "2026-08-04T10:00:00Z"},
			{"id": "t-3", "from_account": "5555666677778888", "to_account": "1111222233334444", "amount": "30.00", "timestamp": "2026-08-03T10:00:00Z"}
		]`))
	})

	client, _, _ := newTestClient(t, handler)

	transfers, err := client.Transfers(context.Background(), "acc-1", 2)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	assert.Equal(t, "t-1", transfers[0].ID)
	assert.Equal(t, "t-2", transfers[1].ID)
}

func TestClient_CreateTransfer_SendsFixedPrecisionAmount(t *testing.T) {
	var gotBody string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "t-9", "from_account": "1111222233334444", "to_account": "5555666677778888", "amount": "10.50", "timestamp": "2026-08-05T10:00:00Z"}`))
	})

	client, _, _ := newTestClient(t, handler)

	transfer, err := client.CreateTransfer(context.Background(), CreateTransferRequest{
		FromAccountNumber: "1111222233334444",
		ToAccountNumber:   "5555666677778888",
		Amount:            decimal.NewFromFloat(10.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "t-9", transfer.ID)
	assert.JSONEq(t, `{"from_account": "1111222233334444", "to_account": "5555666677778888", "amount": "10.50"}`, gotBody)
}

func TestClient_Unauthorized_InvalidatesCredentialOnce(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Token expired"}`))
	})

	client, cred, _ := newTestClient(t, handler)

	_, err := client.Accounts(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	_, err = client.Users(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	assert.Equal(t, int32(1), cred.invalidated.Load())
}

func TestClient_UpstreamErrorDetail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Insufficient funds"}`))
	})

	client, _, _ := newTestClient(t, handler)

	_, err := client.CreateTransfer(context.Background(), CreateTransferRequest{
		FromAccountNumber: "1111222233334444",
		ToAccountNumber:   "5555666677778888",
		Amount:            decimal.NewFromInt(999),
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Insufficient funds", apiErr.Detail)
	assert.Equal(t, "Insufficient funds", UpstreamDetail(err))
	assert.False(t, IsAuthError(err))
}

func TestClient_ServerErrorsOpenBreaker(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client, _, _ := newTestClient(t, handler)

	for i := 0; i < DefaultCircuitBreakerConfig().MaxFailures; i++ {
		_, err := client.Accounts(context.Background())
		require.Error(t, err)
	}

	_, err := client.Accounts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}

func TestClient_AuthenticatedCallWithoutCredential(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the upstream")
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 5*time.Second, logging.Discard(), NopMetrics())

	_, err := client.Accounts(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestClient_Timeout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cred := &fakeCredential{token: "upstream-token"}
	client := NewClient(server.URL, 20*time.Millisecond, logging.Discard(), NopMetrics()).WithCredential(cred)

	_, err := client.Accounts(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Timeout)
}

func TestClient_TraceIDPropagation(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(TraceIDHeader)
		w.Write([]byte(`[]`))
	})

	client, _, _ := newTestClient(t, handler)

	t.Run("context trace id rides the upstream request", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "gateway-trace-7")

		_, err := client.Accounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, "gateway-trace-7", seen)
	})

	t.Run("bare context gets a generated trace id", func(t *testing.T) {
		_, err := client.Accounts(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, seen)
		assert.NotEqual(t, "gateway-trace-7", seen)
	})
}

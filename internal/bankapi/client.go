package bankapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"bark-console/internal/models"

	"github.com/google/uuid"
)

const (
	// TraceIDHeader correlates upstream calls with dashboard request logs.
	TraceIDHeader = "X-Trace-ID"

	// maxErrorBodySize bounds how much of an upstream error body is read.
	maxErrorBodySize = 64 * 1024
)

type traceIDContextKey struct{}

// WithTraceID attaches a trace id to ctx; upstream calls made with that ctx
// carry it instead of generating their own, so one dashboard request reads as
// one trace end to end.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDContextKey{}, traceID)
}

// TraceIDFromContext returns the trace id set by WithTraceID, or "".
func TraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDContextKey{}).(string)
	return traceID
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type createTransferBody struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      string `json:"amount"`
}

type createAccountBody struct {
	User           string `json:"user"`
	AccountNumber  string `json:"account_number"`
	InitialDeposit string `json:"initial_deposit"`
}

type upstreamErrorBody struct {
	Detail string `json:"detail"`
}

// Client is the HTTP consumer of the external banking API. A single base
// client owns the transport and circuit breaker; WithCredential binds
// per-session copies that share both.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *slog.Logger
	metrics        MetricsRecorder
	breaker        *CircuitBreaker
	cred           Credential
	invalidateOnce *sync.Once
}

// NewClient creates the base banking-API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics MetricsRecorder) ClientInterface {
	if metrics == nil {
		metrics = NopMetrics()
	}

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
		metrics:        metrics,
		breaker:        NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		invalidateOnce: new(sync.Once),
	}
}

// WithCredential returns a copy of the client bound to cred. The transport
// and circuit breaker are shared; the invalidation guard is per binding so
// each session's callback fires at most once.
func (c *Client) WithCredential(cred Credential) ClientInterface {
	bound := *c
	bound.cred = cred
	bound.invalidateOnce = new(sync.Once)
	return &bound
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, "login", http.MethodPost, "/token",
		loginRequest{Username: username, Password: password}, &resp, false)
	if err != nil {
		return "", err
	}

	if resp.Token == "" {
		return "", &APIError{Op: "login", Err: errors.New("upstream returned empty token")}
	}

	return resp.Token, nil
}

func (c *Client) Accounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.do(ctx, "list_accounts", http.MethodGet, "/accounts", nil, &accounts, true); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) Account(ctx context.Context, accountID string) (*models.Account, error) {
	var account models.Account
	path := "/accounts/" + accountID
	if err := c.do(ctx, "get_account", http.MethodGet, path, nil, &account, true); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Transfers(ctx context.Context, accountID string, limit int) ([]models.Transfer, error) {
	var transfers []models.Transfer
	path := "/accounts/" + accountID + "/transfers"
	if err := c.do(ctx, "list_transfers", http.MethodGet, path, nil, &transfers, true); err != nil {
		return nil, err
	}

	// Upstream returns newest first; keep only the display window.
	if limit > 0 && len(transfers) > limit {
		transfers = transfers[:limit]
	}

	return transfers, nil
}

func (c *Client) CreateTransfer(ctx context.Context, req CreateTransferRequest) (*models.Transfer, error) {
	body := createTransferBody{
		FromAccount: req.FromAccountNumber,
		ToAccount:   req.ToAccountNumber,
		Amount:      req.Amount.StringFixed(2),
	}

	var transfer models.Transfer
	if err := c.do(ctx, "create_transfer", http.MethodPost, "/transfers", body, &transfer, true); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (c *Client) CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	body := createAccountBody{
		User:           req.UserID,
		AccountNumber:  req.AccountNumber,
		InitialDeposit: req.InitialDeposit.StringFixed(2),
	}

	var account models.Account
	if err := c.do(ctx, "create_account", http.MethodPost, "/accounts", body, &account, true); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, "list_users", http.MethodGet, "/users", nil, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

// do runs one upstream request/response cycle: circuit breaker gate, bearer
// header, status classification, error-body extraction. All client methods
// funnel through here so the failure policy lives in one place.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any, authenticated bool) error {
	if c.breaker.IsOpen() {
		c.count(op, "circuit_open")
		return fmt.Errorf("bankapi: %s: %w", op, ErrUpstreamUnavailable)
	}

	if authenticated && c.cred == nil {
		return &APIError{Op: op, Err: errors.New("no session credential bound")}
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &APIError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &APIError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}

	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.New().String()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(TraceIDHeader, traceID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.cred.Token())
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordProcessingTime("bankapi_request", time.Since(start))

	if err != nil {
		c.breaker.RecordFailure()
		timeout := isTimeout(err)
		status := "transport_error"
		if timeout {
			status = "timeout"
		}
		c.count(op, status)
		c.logger.Warn("upstream request failed",
			"operation", op,
			"trace_id", traceID,
			"timeout", timeout,
			"error", err.Error(),
		)
		return &APIError{Op: op, Timeout: timeout, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// The upstream answered, so this is not an availability failure.
		c.breaker.RecordSuccess()
		c.count(op, "auth_rejected")
		c.logger.Warn("upstream rejected session credential",
			"operation", op,
			"trace_id", traceID,
		)
		if c.cred != nil {
			c.invalidateOnce.Do(c.cred.Invalidate)
		}
		return &AuthError{Op: op}

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.breaker.RecordSuccess()
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				c.count(op, "decode_error")
				return &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
			}
		}
		c.count(op, "ok")
		return nil

	default:
		if resp.StatusCode >= 500 {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		detail := readErrorDetail(resp.Body)
		c.count(op, "upstream_error")
		c.logger.Warn("upstream returned error",
			"operation", op,
			"trace_id", traceID,
			"status", resp.StatusCode,
			"detail", detail,
		)
		return &APIError{Op: op, StatusCode: resp.StatusCode, Detail: detail}
	}
}

func (c *Client) count(op, status string) {
	c.metrics.IncrementCounter("bankapi_requests", map[string]string{
		"operation": op,
		"status":    status,
	})
}

// readErrorDetail extracts the upstream's {"detail": "..."} message when
// present, falling back to a trimmed raw body.
func readErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var parsed upstreamErrorBody
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}

	return strings.TrimSpace(string(raw))
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(string, map[string]string) {}
func (nopMetrics) RecordProcessingTime(string, time.Duration) {}

// NopMetrics returns a recorder that drops everything. Used by tests and the
// terminal console.
func NopMetrics() MetricsRecorder {
	return nopMetrics{}
}

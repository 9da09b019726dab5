package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(ValidationAccountNumber, "trace-123")

	assert.Equal(t, "VALIDATION_004", resp.Error.Code)
	assert.Equal(t, GetErrorMessage(ValidationAccountNumber), resp.Error.Message)
	assert.Equal(t, "trace-123", resp.Error.TraceID)
	assert.Empty(t, resp.Error.Details)
}

func TestNewErrorResponse_WithOptions(t *testing.T) {
	resp := NewErrorResponse(TransferFailed, "trace-456",
		WithMessage("custom message"),
		WithDetails("first", "second"),
	)

	assert.Equal(t, "custom message", resp.Error.Message)
	assert.Equal(t, []string{"first", "second"}, resp.Error.Details)
}

func TestWrapUpstreamError(t *testing.T) {
	resp := WrapUpstreamError("Insufficient funds in source account", "trace-789")
	assert.Equal(t, string(UpstreamError), resp.Error.Code)
	assert.Equal(t, []string{"Insufficient funds in source account"}, resp.Error.Details)

	noDetail := WrapUpstreamError("", "trace-789")
	assert.Empty(t, noDetail.Error.Details)
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ValidationInvalidAmount, http.StatusBadRequest},
		{ValidationAccountNumber, http.StatusBadRequest},
		{ValidationInsufficientFunds, http.StatusUnprocessableEntity},
		{AuthMissingToken, http.StatusUnauthorized},
		{AuthUpstreamRejected, http.StatusUnauthorized},
		{AccountNotFound, http.StatusNotFound},
		{UpstreamError, http.StatusBadGateway},
		{UpstreamUnavailable, http.StatusServiceUnavailable},
		{UpstreamTimeout, http.StatusGatewayTimeout},
		{SystemRateLimitExceeded, http.StatusTooManyRequests},
		{SystemInternalError, http.StatusInternalServerError},
		{ErrorCode("UNKNOWN_999"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetHTTPStatus(tt.code), "code %s", tt.code)
	}
}

func TestErrorResponse_ToJSON(t *testing.T) {
	resp := NewErrorResponse(AuthInvalidCredentials, "trace-1")

	raw, err := resp.ToJSON()
	require.NoError(t, err)

	var decoded ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, resp.Error.Code, decoded.Error.Code)
	assert.Equal(t, resp.Error.TraceID, decoded.Error.TraceID)
}

func TestErrorResponse_Classification(t *testing.T) {
	assert.True(t, NewErrorResponse(ValidationGeneral, "t").IsClientError())
	assert.False(t, NewErrorResponse(ValidationGeneral, "t").IsServerError())
	assert.True(t, NewErrorResponse(UpstreamError, "t").IsServerError())
}

func TestIsValidErrorCode(t *testing.T) {
	assert.True(t, IsValidErrorCode(TransferFailed))
	assert.False(t, IsValidErrorCode(ErrorCode("NOPE_001")))
	assert.Equal(t, "An error occurred", GetErrorMessage(ErrorCode("NOPE_001")))
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bark-console/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanicRecovery_RecoversAndAnswers500(t *testing.T) {
	e := echo.New()

	handler := PanicRecovery()(func(c echo.Context) error {
		panic("selection state corrupted")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/selection", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "trace-panic-test")

	assert.NotPanics(t, func() {
		_ = handler(c)
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var errResp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, string(errors.SystemInternalError), errResp.Error.Code)
	assert.Equal(t, "trace-panic-test", errResp.Error.TraceID)
}

func TestPanicRecovery_PassesThroughNormally(t *testing.T) {
	e := echo.New()

	handler := PanicRecovery()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

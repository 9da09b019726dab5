package middleware

import (
	"bark-console/internal/bankapi"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// TraceIDHeader carries the trace ID on requests and responses.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDContextKey stores the trace ID in the echo context.
	TraceIDContextKey = "trace_id"
)

// RequestID assigns every request a trace ID, echoed back in the response
// header. An incoming trace ID is honored so front-end and gateway logs line
// up, and the ID rides the request context so upstream banking-API calls made
// by handlers carry the same trace.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			traceID := req.Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.New().String()
			}

			c.Set(TraceIDContextKey, traceID)
			c.SetRequest(req.WithContext(bankapi.WithTraceID(req.Context(), traceID)))
			res.Header().Set(TraceIDHeader, traceID)
			return next(c)
		}
	}
}

// GetTraceID reads the trace ID set by RequestID, or "" when absent.
func GetTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

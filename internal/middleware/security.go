package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets the standard browser hardening headers on every
// response.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()

			header.Set("X-Content-Type-Options", "nosniff")
			header.Set("X-Frame-Options", "DENY")
			header.Set("X-XSS-Protection", "1; mode=block")
			header.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			header.Set("Content-Security-Policy", "default-src 'self'")
			header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			header.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

			// Account and transfer data must never be cached by intermediaries.
			header.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			header.Set("Pragma", "no-cache")
			header.Set("Expires", "0")

			return next(c)
		}
	}
}

package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the custom claims in the gateway's own session JWTs. The
// token carries only a reference to the AgentSession; the upstream credential
// stays server-side.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
	AgentName string `json:"agent_name,omitempty"`
	TokenType string `json:"token_type"`
}

package dto

import "time"

// Auth Request DTOs

// LoginRequest contains the agent's upstream banking-API credentials
type LoginRequest struct {
	AgentName string `json:"agent_name" validate:"required,min=1,max=150"`
	Password  string `json:"password" validate:"required"`
}

// Auth Response DTOs

// SessionTokenResponse contains the gateway session token issued after login
type SessionTokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	SessionID   string    `json:"session_id"`
	AgentName   string    `json:"agent_name"`
}

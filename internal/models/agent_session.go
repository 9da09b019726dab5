package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSessionExpired = errors.New("agent session has expired")
	ErrSessionRevoked = errors.New("agent session has been revoked")
)

// AgentSession is the only durable state the dashboard keeps: one upstream
// credential per signed-in support agent. The upstream token is sealed before
// it touches disk; the plaintext never leaves the session service.
type AgentSession struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	AgentName       string     `gorm:"type:varchar(150);not null;index" json:"agent_name"`
	TokenCiphertext []byte     `gorm:"not null" json:"-"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	LastSeenAt      time.Time  `gorm:"not null" json:"last_seen_at"`
	ExpiresAt       time.Time  `gorm:"not null;index" json:"expires_at"`
	RevokedAt       *time.Time `gorm:"index" json:"revoked_at,omitempty"`
}

// BeforeCreate hook for AgentSession
func (s *AgentSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.LastSeenAt.IsZero() {
		s.LastSeenAt = now
	}

	return s.Validate()
}

// Validate validates the session fields
func (s *AgentSession) Validate() error {
	if s.AgentName == "" {
		return errors.New("agent name is required")
	}

	if len(s.TokenCiphertext) == 0 {
		return errors.New("sealed token is required")
	}

	if s.ExpiresAt.IsZero() {
		return errors.New("expiry is required")
	}

	return nil
}

// IsActive reports whether the session can still be used.
func (s *AgentSession) IsActive() bool {
	return s.RevokedAt == nil && time.Now().Before(s.ExpiresAt)
}

// Revoke marks the session as revoked. Idempotent.
func (s *AgentSession) Revoke() {
	if s.RevokedAt != nil {
		return
	}
	now := time.Now()
	s.RevokedAt = &now
}

// TableName returns the table name for AgentSession
func (s *AgentSession) TableName() string {
	return "agent_sessions"
}

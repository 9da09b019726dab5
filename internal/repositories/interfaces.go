package repositories

import (
	"time"

	"bark-console/internal/models"

	"github.com/google/uuid"
)

// SessionRepositoryInterface defines the contract for agent session storage
type SessionRepositoryInterface interface {
	Create(session *models.AgentSession) error
	GetByID(id uuid.UUID) (*models.AgentSession, error)
	GetActiveByID(id uuid.UUID) (*models.AgentSession, error)
	GetActiveByAgentName(agentName string) ([]*models.AgentSession, error)
	TouchLastSeen(id uuid.UUID, at time.Time) error
	Revoke(id uuid.UUID) error
	RevokeAllForAgent(agentName string) (int64, error)
	DeleteExpired(before time.Time) (int64, error)
	CountActive() (int64, error)
}

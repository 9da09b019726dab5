package repositories

import (
	"errors"
	"fmt"
	"time"

	"bark-console/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("agent session not found")
)

// SessionRepository handles database operations for agent sessions
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new agent session repository
func NewSessionRepository(db *gorm.DB) SessionRepositoryInterface {
	return &SessionRepository{
		db: db,
	}
}

// Create persists a new agent session
func (r *SessionRepository) Create(session *models.AgentSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create agent session: %w", err)
	}

	return nil
}

// GetByID retrieves an agent session by its ID regardless of state
func (r *SessionRepository) GetByID(id uuid.UUID) (*models.AgentSession, error) {
	var session models.AgentSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get agent session by ID: %w", err)
	}

	return &session, nil
}

// GetActiveByID retrieves a session by ID and reports why it is unusable when
// it exists but is revoked or expired.
func (r *SessionRepository) GetActiveByID(id uuid.UUID) (*models.AgentSession, error) {
	session, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if session.RevokedAt != nil {
		return nil, models.ErrSessionRevoked
	}

	if !time.Now().Before(session.ExpiresAt) {
		return nil, models.ErrSessionExpired
	}

	return session, nil
}

// GetActiveByAgentName retrieves all live sessions for an agent
func (r *SessionRepository) GetActiveByAgentName(agentName string) ([]*models.AgentSession, error) {
	var sessions []*models.AgentSession

	err := r.db.Where("agent_name = ? AND revoked_at IS NULL AND expires_at > ?", agentName, time.Now()).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get active sessions for agent: %w", err)
	}

	return sessions, nil
}

// TouchLastSeen updates the session's last activity timestamp
func (r *SessionRepository) TouchLastSeen(id uuid.UUID, at time.Time) error {
	result := r.db.Model(&models.AgentSession{}).
		Where("id = ?", id).
		Update("last_seen_at", at)

	if result.Error != nil {
		return fmt.Errorf("failed to update last seen: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Revoke marks a session as revoked. Revoking an already revoked session is
// a no-op.
func (r *SessionRepository) Revoke(id uuid.UUID) error {
	result := r.db.Model(&models.AgentSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", time.Now())

	if result.Error != nil {
		return fmt.Errorf("failed to revoke agent session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Distinguish missing from already revoked.
		if _, err := r.GetByID(id); err != nil {
			return err
		}
	}

	return nil
}

// RevokeAllForAgent revokes every live session for an agent and returns how
// many were revoked
func (r *SessionRepository) RevokeAllForAgent(agentName string) (int64, error) {
	result := r.db.Model(&models.AgentSession{}).
		Where("agent_name = ? AND revoked_at IS NULL", agentName).
		Update("revoked_at", time.Now())

	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke sessions for agent: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// DeleteExpired removes sessions whose expiry is before the given time
func (r *SessionRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", before).Delete(&models.AgentSession{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// CountActive returns the number of live sessions
func (r *SessionRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.AgentSession{}).
		Where("revoked_at IS NULL AND expires_at > ?", time.Now()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}

	return count, nil
}

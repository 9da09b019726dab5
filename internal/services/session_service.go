package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/models"
	"bark-console/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
)

var ErrSealedTokenCorrupt = errors.New("sealed upstream token failed to open")

// SessionService manages agent sessions. The upstream bearer token obtained at
// login is sealed with chacha20poly1305 before it is persisted; the plaintext
// exists only in memory, bound to the session's workspace. The seal is keyed
// to the session id, so a ciphertext copied onto another row will not open.
type SessionService struct {
	repo    repositories.SessionRepositoryInterface
	client  bankapi.ClientInterface
	sealKey []byte
	ttl     time.Duration
	logger  *slog.Logger
	metrics MetricsRecorderInterface
}

// NewSessionService creates the session service. client is the unbound base
// bank client; Login is its only use here.
func NewSessionService(
	repo repositories.SessionRepositoryInterface,
	client bankapi.ClientInterface,
	sealKey []byte,
	ttl time.Duration,
	logger *slog.Logger,
	metrics MetricsRecorderInterface,
) SessionServiceInterface {
	return &SessionService{
		repo:    repo,
		client:  client,
		sealKey: sealKey,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *SessionService) Login(ctx context.Context, agentName, password string) (*LoginResult, error) {
	token, err := s.client.Login(ctx, agentName, password)
	if err != nil {
		s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": "login_failed"})
		return nil, err
	}

	sessionID := uuid.New()
	sealed, err := sealToken(s.sealKey, token, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to seal upstream token: %w", err)
	}

	session := &models.AgentSession{
		ID:              sessionID,
		AgentName:       agentName,
		TokenCiphertext: sealed,
		ExpiresAt:       time.Now().UTC().Add(s.ttl),
	}

	if err := s.repo.Create(session); err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": "login_success"})
	s.logger.Info("agent signed in", "session_id", session.ID, "agent_name", agentName)

	return &LoginResult{
		Session:       session,
		UpstreamToken: token,
	}, nil
}

func (s *SessionService) Resolve(sessionID uuid.UUID) (*ResolvedSession, error) {
	session, err := s.repo.GetActiveByID(sessionID)
	if err != nil {
		return nil, err
	}

	token, err := openToken(s.sealKey, session.TokenCiphertext, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.TouchLastSeen(sessionID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to touch session", "session_id", sessionID, "error", err.Error())
	}

	return &ResolvedSession{
		Session:       session,
		UpstreamToken: token,
	}, nil
}

func (s *SessionService) Revoke(sessionID uuid.UUID) error {
	if err := s.repo.Revoke(sessionID); err != nil {
		return err
	}

	s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": "logout"})
	s.logger.Info("agent session revoked", "session_id", sessionID)
	return nil
}

func (s *SessionService) RevokeOnAuthFailure(sessionID uuid.UUID) error {
	if err := s.repo.Revoke(sessionID); err != nil {
		return err
	}

	s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": "upstream_invalidated"})
	s.logger.Warn("agent session revoked after upstream rejected its token", "session_id", sessionID)
	return nil
}

// sealToken encrypts an upstream token with XChaCha20-Poly1305, binding the
// ciphertext to the session id. Output layout: nonce || ciphertext.
func sealToken(key []byte, token string, sessionID uuid.UUID) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	sealed := aead.Seal(nonce, nonce, []byte(token), sessionID[:])
	return sealed, nil
}

// openToken reverses sealToken for the same key and session id.
func openToken(key, sealed []byte, sessionID uuid.UUID) (string, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}

	if len(sealed) < aead.NonceSize() {
		return "", ErrSealedTokenCorrupt
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	token, err := aead.Open(nil, nonce, ciphertext, sessionID[:])
	if err != nil {
		return "", ErrSealedTokenCorrupt
	}

	return string(token), nil
}

package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bark-console/internal/config"
	"bark-console/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const TokenTypeSession = "session"

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token is expired")
	ErrInvalidIssuer     = errors.New("invalid issuer")
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
)

// TokenService issues and validates the gateway's own session JWTs. The token
// carries only a reference to the AgentSession; possession of a valid JWT is
// necessary but not sufficient, since the referenced session can be revoked
// or expired independently.
type TokenService struct {
	config.JWTConfig
}

// NewTokenService creates a new token service from JWT configuration
func NewTokenService(jwtConfig *config.JWTConfig) TokenServiceInterface {
	return &TokenService{
		JWTConfig: *jwtConfig,
	}
}

// GenerateSessionToken generates a JWT referencing the given agent session.
// The JWT never outlives the session it points at.
func (ts *TokenService) GenerateSessionToken(session *models.AgentSession) (string, time.Time, error) {
	if session == nil {
		return "", time.Time{}, errors.New("session cannot be nil")
	}

	now := time.Now()
	expiresAt := now.Add(ts.SessionTokenDuration)
	if session.ExpiresAt.Before(expiresAt) {
		expiresAt = session.ExpiresAt
	}

	claims := &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   session.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: session.ID.String(),
		AgentName: session.AgentName,
		TokenType: TokenTypeSession,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)

	tokenString, err := token.SignedString(ts.PrivateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateSessionToken validates a session JWT and returns its claims
func (ts *TokenService) ValidateSessionToken(tokenString string) (*models.SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.PublicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Issuer != ts.Issuer {
		return nil, ErrInvalidIssuer
	}

	if claims.TokenType != TokenTypeSession {
		return nil, ErrInvalidTokenType
	}

	return claims, nil
}

// ExtractTokenFromHeader extracts the bearer token from an Authorization
// header value
func (ts *TokenService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrEmptyToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

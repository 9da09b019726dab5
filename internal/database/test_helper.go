package database

import (
	"testing"
	"time"

	"bark-console/internal/config"
	"bark-console/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			Driver:         "sqlite",
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	if err := db.Exec("DELETE FROM agent_sessions").Error; err != nil {
		t.Logf("failed to cleanup agent_sessions: %v", err)
	}
}

// CreateTestSession persists an active session with a throwaway ciphertext.
func CreateTestSession(t *testing.T, db *DB, agentName string) *models.AgentSession {
	t.Helper()

	session := &models.AgentSession{
		AgentName:       agentName,
		TokenCiphertext: []byte("sealed-token"),
		LastSeenAt:      time.Now().UTC(),
		ExpiresAt:       time.Now().UTC().Add(time.Hour),
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}

	return session
}

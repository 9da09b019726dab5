package database

import (
	"fmt"
	"log"
	"time"

	"bark-console/internal/config"
	"bark-console/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the gorm handle for the agent-session store. The store holds only
// console-side state (agent sessions and their sealed upstream tokens); all
// banking data stays upstream.
type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	if cfg.IsPostgres() {
		dialector = postgres.Open(cfg.DSN())
	} else {
		dialector = sqlite.Open(cfg.Path)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.AgentSession{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_agent_sessions_agent_name ON agent_sessions(agent_name)",
		"CREATE INDEX IF NOT EXISTS idx_agent_sessions_expires_at ON agent_sessions(expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_agent_sessions_revoked_at ON agent_sessions(revoked_at)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			log.Printf("Failed to create index: %s, error: %v", query, err)
		}
	}

	return nil
}

// CleanupExpiredSessions removes sessions past their expiry and sessions
// revoked more than the retention window ago. Run periodically from main.
func (db *DB) CleanupExpiredSessions(retention time.Duration) error {
	now := time.Now().UTC()

	if err := db.DB.Where("expires_at < ?", now).Delete(&models.AgentSession{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}

	cutoff := now.Add(-retention)
	if err := db.DB.Where("revoked_at IS NOT NULL AND revoked_at < ?", cutoff).Delete(&models.AgentSession{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup revoked sessions: %w", err)
	}

	return nil
}

// Initialize creates and configures the session-store connection. Postgres
// deployments run SQL migrations via golang-migrate when enabled; sqlite and
// migration failures fall back to GORM AutoMigrate.
func Initialize(cfg *config.Config) (*DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.IsPostgres() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}

		if err := RunMigrationsIfEnabled(sqlDB); err != nil {
			log.Printf("Warning: migration runner failed: %v", err)
			log.Println("Falling back to GORM AutoMigrate...")
		}
	}

	// AutoMigrate is a no-op when the SQL migrations already created the
	// schema, and the only migration path for sqlite.
	if err := db.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.CreateIndexes(); err != nil {
		log.Printf("Warning: failed to create some indexes: %v", err)
	}

	log.Println("Session store initialized successfully")

	return db, nil
}

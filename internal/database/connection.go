// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ValenteCreativo/Side-B-sub000/internal/config"
	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.LogLevel == "silent" {
		logLevel = logger.Silent
	}

	// TranslateError turns driver-level unique violations into
	// gorm.ErrDuplicatedKey, which the license store relies on to detect
	// a lost insert race.
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.License{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	// Uniqueness of a (session, buyer) license pair is enforced here, at
	// the schema level. Application checks only short-circuit; this index
	// is what makes concurrent confirms converge on one row.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_licenses_session_buyer ON licenses(session_id, buyer_id)",
	).Error; err != nil {
		return fmt.Errorf("failed to create license uniqueness index: %w", err)
	}

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_wallet ON users(wallet_address)",

		// Session indexes
		"CREATE INDEX IF NOT EXISTS idx_sessions_owner ON sessions(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at DESC)",

		// License indexes
		"CREATE INDEX IF NOT EXISTS idx_licenses_buyer ON licenses(buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_licenses_session ON licenses(session_id)",
		"CREATE INDEX IF NOT EXISTS idx_licenses_created_at ON licenses(created_at DESC)",

		// Notification indexes
		"CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at DESC)",

		// Full-text search
		"CREATE INDEX IF NOT EXISTS idx_sessions_search ON sessions USING GIN(to_tsvector('english', title || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

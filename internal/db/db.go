package db

import (
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Driver message matching
	"time"    // Retry backoff

	"campus_voting/internal/config" // Application configuration

	mysqlerr "github.com/go-sql-driver/mysql" // MySQL error codes
	"github.com/sirupsen/logrus"              // Logging
	"gorm.io/driver/mysql"                    // MySQL driver for GORM
	"gorm.io/driver/postgres"                 // PostgreSQL driver for GORM
	"gorm.io/gorm"                            // GORM ORM library
	"gorm.io/gorm/logger"                     // GORM logger
)

// mysqlDuplicateEntry is ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

// Dialector picks the GORM dialector for the configured driver
func Dialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == "postgres" {
		return postgres.Open(cfg.DSN())
	}
	return mysql.Open(cfg.DSN())
}

// GormConfig is shared by the server, the migrator and the tests
func GormConfig(isProd bool) *gorm.Config {
	level := logger.Warn
	if isProd {
		level = logger.Error
	}
	return &gorm.Config{
		TranslateError: true, // Surface gorm.ErrDuplicatedKey for unique violations
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,       // Log level
			IgnoreRecordNotFoundError: true,        // Lookups that miss are expected
		}),
	}
}

// Open connects to the database, retrying while it comes up
func Open(cfg *config.Config, attempts int) (*gorm.DB, error) {
	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= attempts; i++ {
		conn, err = gorm.Open(Dialector(cfg), GormConfig(cfg.IsProd))
		if err == nil {
			return conn, nil
		}
		logrus.WithFields(logrus.Fields{
			"attempt": i,
			"of":      attempts,
			"error":   err.Error(),
		}).Warn("Waiting for database")
		if i < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
}

// Migrate creates or updates the users, candidates and votes tables
func Migrate(conn *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// IsDuplicateKey reports whether err is a unique constraint violation
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqlerr.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}
	// SQLite only reports the violation in its message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

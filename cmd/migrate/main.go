package main

import (
	"campus_voting/internal/config" // Configuration
	"campus_voting/internal/db"     // Database

	"github.com/sirupsen/logrus" // Logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	conn, err := db.Open(cfg, 1)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed.")
}

package api

import (
	"campus_voting/internal/config"  // Application configuration
	"campus_voting/internal/mailer"  // OTP delivery
	"campus_voting/internal/session" // Server-side sessions

	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Env carries the shared dependencies every handler factory closes over
type Env struct {
	DB       *gorm.DB         // Relational store
	Redis    *redis.Client    // Results cache
	Sessions *session.Manager // Cookie + Redis sessions
	Mailer   mailer.Mailer    // Verification code delivery
	Config   *config.Config   // Runtime settings
}

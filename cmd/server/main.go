package main

import (
	"context"   // context package is needed for Redis operations
	"errors"    // Server shutdown check
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Shutdown timeout

	"campus_voting/internal/api"     // HTTP handlers
	"campus_voting/internal/config"  // Configuration
	"campus_voting/internal/db"      // Database connection and migrations
	"campus_voting/internal/mailer"  // OTP delivery
	"campus_voting/internal/session" // Server-side sessions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	conn, err := db.Open(cfg, 30)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logrus.Fatalf("failed to create upload dir: %v", err)
	}

	m, err := mailer.New(cfg)
	if err != nil {
		logrus.Fatalf("failed to set up mailer: %v", err)
	}

	store := session.NewStore(redisClient, cfg.SessionTTL)
	router := api.NewRouter(&api.Env{
		DB:       conn,
		Redis:    redisClient,
		Sessions: session.NewManager(store, cfg.JWTSecret, cfg.CookieName, cfg.CookieSecure),
		Mailer:   m,
		Config:   cfg,
	})
	// Set trusted proxies for Gin
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logrus.Errorf("shutdown: %v", err)
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":        cfg.AppPort,
		"driver":      cfg.DBDriver,
		"otp_enabled": cfg.OTPEnabled,
	}).Info("Server running")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("server: %v", err)
	}
	logrus.Info("Server closed")
}

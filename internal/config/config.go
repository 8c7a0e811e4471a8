package config

import (
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBDriver   string // mysql or postgres
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // Secret used to sign session cookies
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	SessionTTL   time.Duration // Lifetime of a server-side session
	CookieName   string        // Name of the session cookie
	CookieSecure bool          // Send the cookie over HTTPS only

	OTPEnabled bool          // Gate registration and login behind an emailed code
	OTPTTL     time.Duration // Lifetime of an emailed code
	SMTPHost   string        // SMTP relay; empty logs codes instead of mailing them
	SMTPPort   int           // SMTP port
	SMTPUser   string        // SMTP username
	SMTPPass   string        // SMTP password
	SMTPFrom   string        // Sender address

	AdminUsername string // Static admin username
	AdminPassword string // Static admin password

	UploadDir       string        // Directory for candidate images
	MaxUploadBytes  int64         // Per-file upload limit
	ResultsCacheTTL time.Duration // How long tallies stay cached in Redis
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	driver := getEnvOrDefault("DB_DRIVER", "mysql")
	defaultDBPort := "3306"
	if driver == "postgres" {
		defaultDBPort = "5432"
	}
	return &Config{
		AppPort:    getEnvOrDefault("APP_PORT", "8080"),
		DBDriver:   driver,
		DBUser:     getEnvOrDefault("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:     getEnvOrDefault("DB_PORT", defaultDBPort),
		DBName:     getEnvOrDefault("DB_NAME", "voting_system"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		RedisAddr:  getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPass:  os.Getenv("REDIS_PASS"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		IsProd:     os.Getenv("IS_PROD") == "true",

		SessionTTL:   getEnvDuration("SESSION_TTL", 2*time.Hour),
		CookieName:   getEnvOrDefault("COOKIE_NAME", "voting_session"),
		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",

		OTPEnabled: os.Getenv("OTP_ENABLED") == "true",
		OTPTTL:     getEnvDuration("OTP_TTL", 5*time.Minute),
		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   getEnvInt("SMTP_PORT", 587),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		SMTPFrom:   getEnvOrDefault("SMTP_FROM", "no-reply@campus-voting.local"),

		AdminUsername: getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnvOrDefault("ADMIN_PASSWORD", "admin123"),

		UploadDir:       getEnvOrDefault("UPLOAD_DIR", "static/uploads"),
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
		ResultsCacheTTL: getEnvDuration("RESULTS_CACHE_TTL", 30*time.Second),
	}
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.OTPEnabled && c.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL must be positive")
	}
	return nil
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// getEnvOrDefault returns the environment variable or a fallback
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return d
}

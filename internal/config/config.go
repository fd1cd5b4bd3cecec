package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Session   SessionConfig
	Email     EmailConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	App       AppConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Vault     VaultConfig
	AI        AIConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string
	Port         string
	TimeoutRead  time.Duration
	TimeoutWrite time.Duration
	TimeoutIdle  time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

// SessionConfig holds session-related configuration
type SessionConfig struct {
	Timeout time.Duration
}

// EmailConfig holds email-related configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	PortalURL    string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Duration time.Duration
	// Tighter per-user budget for AI drafting endpoints
	DraftingRequests int
	DraftingDuration time.Duration
}

// AppConfig holds general application configuration
type AppConfig struct {
	Env                string
	Name               string
	Version            string
	LogLevel           string
	EnableRegistration bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	SessionReminderCron    string // e.g., "0 8 * * *" (Daily 8 AM)
	UnreadDigestCron       string // e.g., "0 17 * * 5" (Friday 5 PM)
	ReminderLeadHours      int    // How far ahead to look for upcoming sessions
	EnableSessionReminders bool
	EnableUnreadDigest     bool
}

// VaultConfig holds Vault-related configuration
type VaultConfig struct {
	Address      string
	Token        string
	TransitMount string
	Enabled      bool
	MasterSecret string // fallback key derivation secret when Vault is disabled
}

// AIConfig holds configuration for the model provider used for drafting
type AIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Enabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	// godotenv doesn't override already-set variables, so order matters
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnv("SERVER_PORT", "8080"),
			TimeoutRead:  getDurationEnv("SERVER_TIMEOUT_READ", 15*time.Second),
			TimeoutWrite: getDurationEnv("SERVER_TIMEOUT_WRITE", 15*time.Second),
			TimeoutIdle:  getDurationEnv("SERVER_TIMEOUT_IDLE", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "consultingos"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "consultingos_db"),
			SSLMode:         getEnv("DB_SSLMODE", "prefer"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			Expiration:        getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
			RefreshExpiration: getDurationEnv("JWT_REFRESH_EXPIRATION", 168*time.Hour),
		},
		Session: SessionConfig{
			Timeout: getDurationEnv("SESSION_TIMEOUT", 30*time.Minute),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
			PortalURL:    getEnv("PORTAL_URL", "http://localhost:3000"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getSliceEnv("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type"}),
			ExposedHeaders:   getSliceEnv("CORS_EXPOSED_HEADERS", []string{"Link"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getIntEnv("CORS_MAX_AGE", 300),
		},
		RateLimit: RateLimitConfig{
			Enabled:          getBoolEnv("RATE_LIMIT_ENABLED", true),
			Requests:         getIntEnv("RATE_LIMIT_REQUESTS", 100),
			Duration:         getDurationEnv("RATE_LIMIT_DURATION", 1*time.Minute),
			DraftingRequests: getIntEnv("RATE_LIMIT_DRAFTING_REQUESTS", 10),
			DraftingDuration: getDurationEnv("RATE_LIMIT_DRAFTING_DURATION", 1*time.Minute),
		},
		App: AppConfig{
			Env:                getEnv("APP_ENV", "development"),
			Name:               getEnv("APP_NAME", "ConsultingOS"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			EnableRegistration: getBoolEnv("ENABLE_REGISTRATION", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Scheduler: SchedulerConfig{
			SessionReminderCron:    getEnv("SCHEDULER_SESSION_REMINDER_CRON", "0 8 * * *"), // Daily 8 AM
			UnreadDigestCron:       getEnv("SCHEDULER_UNREAD_DIGEST_CRON", "0 17 * * 5"),   // Friday 5 PM
			ReminderLeadHours:      getIntEnv("SCHEDULER_REMINDER_LEAD_HOURS", 24),
			EnableSessionReminders: getBoolEnv("SCHEDULER_ENABLE_SESSION_REMINDERS", true),
			EnableUnreadDigest:     getBoolEnv("SCHEDULER_ENABLE_UNREAD_DIGEST", true),
		},
		Vault: VaultConfig{
			Address:      getEnv("VAULT_ADDR", "http://localhost:8200"),
			Token:        getEnv("VAULT_TOKEN", ""),
			TransitMount: getEnv("VAULT_TRANSIT_MOUNT", "transit"),
			Enabled:      getBoolEnv("VAULT_ENABLED", false),
			MasterSecret: getEnv("NOTES_MASTER_SECRET", ""),
		},
		AI: AIConfig{
			BaseURL: getEnv("AI_BASE_URL", "https://api.anthropic.com"),
			APIKey:  getEnv("AI_API_KEY", ""),
			Model:   getEnv("AI_MODEL", "claude-sonnet-4-20250514"),
			Enabled: getBoolEnv("AI_ENABLED", true),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Database.Password == "" && c.App.Env == "production" {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}
	if c.Vault.Enabled && c.Vault.Token == "" {
		return fmt.Errorf("VAULT_TOKEN is required when VAULT_ENABLED is true")
	}
	if !c.Vault.Enabled && c.Vault.MasterSecret == "" && c.App.Env == "production" {
		return fmt.Errorf("NOTES_MASTER_SECRET is required in production when Vault is disabled")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, v := range parts {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	StorageDriver string

	// Aggregation provider
	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string

	// TokenEncryptionKey seals provider access tokens at rest (32 bytes, base64).
	TokenEncryptionKey string

	// Sync
	SyncMaxAttempts      int
	SyncInitialBackoff   time.Duration
	SyncMaxBackoff       time.Duration
	SyncPageSize         int
	SyncScheduleInterval time.Duration

	// Webhooks
	WebhookSecret    string
	WebhookRateLimit string // ulule/limiter format, e.g. "60-M"
	ChangeWebhookURL string

	FrontendBaseURL string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("STORAGE_DRIVER", StoragePostgres)
	viper.SetDefault("PLAID_CLIENT_ID", "")
	viper.SetDefault("PLAID_SECRET", "")
	viper.SetDefault("PLAID_ENV", "sandbox")
	viper.SetDefault("TOKEN_ENCRYPTION_KEY", "")
	viper.SetDefault("SYNC_MAX_ATTEMPTS", 5)
	viper.SetDefault("SYNC_INITIAL_BACKOFF", "500ms")
	viper.SetDefault("SYNC_MAX_BACKOFF", "30s")
	viper.SetDefault("SYNC_PAGE_SIZE", 250)
	viper.SetDefault("SYNC_SCHEDULE_INTERVAL", "6h")
	viper.SetDefault("WEBHOOK_SECRET", "")
	viper.SetDefault("WEBHOOK_RATE_LIMIT", "60-M")
	viper.SetDefault("CHANGE_WEBHOOK_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        viper.GetString("PGSQL_URL"),
		Port:               viper.GetString("PORT"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      viper.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		StorageDriver:      viper.GetString("STORAGE_DRIVER"),
		PlaidClientID:      viper.GetString("PLAID_CLIENT_ID"),
		PlaidSecret:        viper.GetString("PLAID_SECRET"),
		PlaidEnv:           viper.GetString("PLAID_ENV"),
		TokenEncryptionKey: viper.GetString("TOKEN_ENCRYPTION_KEY"),
		SyncMaxAttempts:    viper.GetInt("SYNC_MAX_ATTEMPTS"),
		SyncPageSize:       viper.GetInt("SYNC_PAGE_SIZE"),
		WebhookSecret:      viper.GetString("WEBHOOK_SECRET"),
		WebhookRateLimit:   viper.GetString("WEBHOOK_RATE_LIMIT"),
		ChangeWebhookURL:   viper.GetString("CHANGE_WEBHOOK_URL"),
		FrontendBaseURL:    viper.GetString("FRONTEND_BASE_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StorageMemory:
		log.Println("Warning: STORAGE_DRIVER=memory, data will not survive a restart.")
	default:
		log.Printf("Warning: unknown STORAGE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StorageDriver, StoragePostgres)
		cfg.StorageDriver = StoragePostgres
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.PlaidClientID == "" || cfg.PlaidSecret == "" {
		log.Println("Warning: PLAID_CLIENT_ID or PLAID_SECRET not set. Bank linking and sync will fail.")
	}
	if cfg.TokenEncryptionKey == "" {
		log.Println("Warning: TOKEN_ENCRYPTION_KEY not set. A random key is used and stored access tokens will not survive a restart.")
	}
	if cfg.WebhookSecret == "" {
		log.Println("Warning: WEBHOOK_SECRET not set. Provider webhooks will be rejected.")
	}

	if cfg.SyncMaxAttempts < 1 {
		log.Printf("Warning: Invalid value for SYNC_MAX_ATTEMPTS (%d). Defaulting to 5.\n", cfg.SyncMaxAttempts)
		cfg.SyncMaxAttempts = 5
	}
	if cfg.SyncPageSize < 1 || cfg.SyncPageSize > 500 {
		log.Printf("Warning: Invalid value for SYNC_PAGE_SIZE (%d). Defaulting to 250.\n", cfg.SyncPageSize)
		cfg.SyncPageSize = 250
	}
	cfg.SyncInitialBackoff = durationOrDefault("SYNC_INITIAL_BACKOFF", 500*time.Millisecond)
	cfg.SyncMaxBackoff = durationOrDefault("SYNC_MAX_BACKOFF", 30*time.Second)
	cfg.SyncScheduleInterval = durationOrDefault("SYNC_SCHEDULE_INTERVAL", 6*time.Hour)

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SMTPConfig holds outgoing mail settings. An empty Host disables email notifications.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	TLSEnabled bool
	From       string
}

// Enabled reports whether email delivery is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	JWTSecret          string
	JWTIssuer          string
	CORSAllowedOrigins []string
	RateLimit          string // ulule formatted rate, e.g. "100-M"; empty disables
	ExportRateLimit    string // empty disables
	MigrationsPath     string

	SMTP SMTPConfig

	NotifyQueueSize int
	DefaultPageSize int
	MaxPageSize     int
	MaxExportRows   int
}

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", "budget-request-app")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("EXPORT_RATE_LIMIT", "10-M")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_TLS_ENABLED", false)
	viper.SetDefault("SMTP_FROM", "budget@localhost")
	viper.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	viper.SetDefault("DEFAULT_PAGE_SIZE", 10)
	viper.SetDefault("MAX_PAGE_SIZE", 100)
	viper.SetDefault("MAX_EXPORT_ROWS", 5000)

	// An explicitly empty variable overrides its default, e.g. EXPORT_RATE_LIMIT="" disables the export limiter.
	viper.AllowEmptyEnv(true)
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.ExportRateLimit = viper.GetString("EXPORT_RATE_LIMIT")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.SMTP = SMTPConfig{
		Host:       viper.GetString("SMTP_HOST"),
		Port:       viper.GetInt("SMTP_PORT"),
		User:       viper.GetString("SMTP_USER"),
		Password:   viper.GetString("SMTP_PASSWORD"),
		TLSEnabled: viper.GetBool("SMTP_TLS_ENABLED"),
		From:       viper.GetString("SMTP_FROM"),
	}
	if !cfg.SMTP.Enabled() {
		log.Println("Warning: SMTP_HOST not set. Email notifications are disabled.")
	}

	cfg.NotifyQueueSize = positiveOr(viper.GetInt("NOTIFY_QUEUE_SIZE"), 256, "NOTIFY_QUEUE_SIZE")
	cfg.DefaultPageSize = positiveOr(viper.GetInt("DEFAULT_PAGE_SIZE"), 10, "DEFAULT_PAGE_SIZE")
	cfg.MaxPageSize = positiveOr(viper.GetInt("MAX_PAGE_SIZE"), 100, "MAX_PAGE_SIZE")
	cfg.MaxExportRows = positiveOr(viper.GetInt("MAX_EXPORT_ROWS"), 5000, "MAX_EXPORT_ROWS")
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		log.Printf("Warning: DEFAULT_PAGE_SIZE (%d) exceeds MAX_PAGE_SIZE (%d). Clamping.\n", cfg.DefaultPageSize, cfg.MaxPageSize)
		cfg.DefaultPageSize = cfg.MaxPageSize
	}

	return cfg, nil
}

func positiveOr(v, def int, key string) int {
	if v <= 0 {
		log.Printf("Warning: invalid value for %s (%d). Defaulting to %d.\n", key, v, def)
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

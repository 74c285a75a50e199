package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	DB          DBConfig
	JWT         JWTConfig
	S3          S3Config
	Log         LogConfig
	CORS        CORSConfig
	Email       EmailConfig
	RateLimit   RateLimitConfig
	Retry       RetryConfig
	LedgerAudit LedgerAuditConfig
	Idempotency IdempotencyConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// RetryConfig holds the backoff policy for outbound calls.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
}

// LedgerAuditConfig holds the background balance reconciliation settings.
type LedgerAuditConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	IntervalSecs int  `mapstructure:"interval_secs"`
	AutoFix      bool `mapstructure:"auto_fix"`
	Concurrency  int  `mapstructure:"concurrency"`
}

// IdempotencyConfig holds how long replayable request keys are remembered in memory.
type IdempotencyConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in production.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	InviteTokenExpiry  time.Duration `mapstructure:"invite_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the KHATA_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("KHATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "khata")
	v.SetDefault("db.password", "khata_secret")
	v.SetDefault("db.name", "khata_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.invite_expiry", "72h")
	v.SetDefault("jwt.issuer", "khata")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "khata-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.public_base_url", "")
	v.SetDefault("s3.max_file_size_mb", 10)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "noreply@khata.app")
	v.SetDefault("email.from_name", "Khata")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 10)
	v.SetDefault("rate_limit.burst", 30)

	// Retry defaults
	v.SetDefault("retry.max_retries", 5)
	v.SetDefault("retry.base_delay", "2s")
	v.SetDefault("retry.max_delay", "60s")

	// Ledger audit defaults
	v.SetDefault("ledger_audit.enabled", true)
	v.SetDefault("ledger_audit.interval_secs", 3600)
	v.SetDefault("ledger_audit.auto_fix", false)
	v.SetDefault("ledger_audit.concurrency", 4)

	// Idempotency defaults
	v.SetDefault("idempotency.ttl", "24h")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "KHATA_SERVER_PORT",
		"server.read_timeout":        "KHATA_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "KHATA_SERVER_WRITE_TIMEOUT",
		"server.environment":         "KHATA_SERVER_ENVIRONMENT",
		"db.host":                    "KHATA_DB_HOST",
		"db.port":                    "KHATA_DB_PORT",
		"db.user":                    "KHATA_DB_USER",
		"db.password":                "KHATA_DB_PASSWORD",
		"db.name":                    "KHATA_DB_NAME",
		"db.sslmode":                 "KHATA_DB_SSLMODE",
		"db.max_open":                "KHATA_DB_MAX_OPEN",
		"db.max_idle":                "KHATA_DB_MAX_IDLE",
		"jwt.secret":                 "KHATA_JWT_SECRET",
		"jwt.access_expiry":          "KHATA_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":         "KHATA_JWT_REFRESH_EXPIRY",
		"jwt.invite_expiry":          "KHATA_JWT_INVITE_EXPIRY",
		"jwt.issuer":                 "KHATA_JWT_ISSUER",
		"s3.region":                  "KHATA_S3_REGION",
		"s3.bucket":                  "KHATA_S3_BUCKET",
		"s3.endpoint":                "KHATA_S3_ENDPOINT",
		"s3.access_key":              "KHATA_S3_ACCESS_KEY",
		"s3.secret_key":              "KHATA_S3_SECRET_KEY",
		"s3.public_base_url":         "KHATA_S3_PUBLIC_BASE_URL",
		"s3.max_file_size_mb":        "KHATA_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":          "KHATA_S3_PRESIGN_EXPIRY",
		"log.level":                  "KHATA_LOG_LEVEL",
		"log.format":                 "KHATA_LOG_FORMAT",
		"cors.allowed_origins":       "KHATA_CORS_ALLOWED_ORIGINS",
		"email.provider":             "KHATA_EMAIL_PROVIDER",
		"email.region":               "KHATA_EMAIL_REGION",
		"email.from_address":         "KHATA_EMAIL_FROM_ADDRESS",
		"email.from_name":            "KHATA_EMAIL_FROM_NAME",
		"email.frontend_url":         "KHATA_EMAIL_FRONTEND_URL",
		"rate_limit.enabled":         "KHATA_RATE_LIMIT_ENABLED",
		"rate_limit.rps":             "KHATA_RATE_LIMIT_RPS",
		"rate_limit.burst":           "KHATA_RATE_LIMIT_BURST",
		"retry.max_retries":          "KHATA_RETRY_MAX_RETRIES",
		"retry.base_delay":           "KHATA_RETRY_BASE_DELAY",
		"retry.max_delay":            "KHATA_RETRY_MAX_DELAY",
		"ledger_audit.enabled":       "KHATA_LEDGER_AUDIT_ENABLED",
		"ledger_audit.interval_secs": "KHATA_LEDGER_AUDIT_INTERVAL_SECS",
		"ledger_audit.auto_fix":      "KHATA_LEDGER_AUDIT_AUTO_FIX",
		"ledger_audit.concurrency":   "KHATA_LEDGER_AUDIT_CONCURRENCY",
		"idempotency.ttl":            "KHATA_IDEMPOTENCY_TTL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if KHATA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("KHATA_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		InviteTokenExpiry:  v.GetDuration("jwt.invite_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PublicBaseURL: v.GetString("s3.public_base_url"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled: v.GetBool("rate_limit.enabled"),
		RPS:     v.GetFloat64("rate_limit.rps"),
		Burst:   v.GetInt("rate_limit.burst"),
	}

	cfg.Retry = RetryConfig{
		MaxRetries: v.GetInt("retry.max_retries"),
		BaseDelay:  v.GetDuration("retry.base_delay"),
		MaxDelay:   v.GetDuration("retry.max_delay"),
	}

	cfg.LedgerAudit = LedgerAuditConfig{
		Enabled:      v.GetBool("ledger_audit.enabled"),
		IntervalSecs: v.GetInt("ledger_audit.interval_secs"),
		AutoFix:      v.GetBool("ledger_audit.auto_fix"),
		Concurrency:  v.GetInt("ledger_audit.concurrency"),
	}

	cfg.Idempotency = IdempotencyConfig{
		TTL: v.GetDuration("idempotency.ttl"),
	}

	if cfg.LedgerAudit.Enabled && cfg.LedgerAudit.IntervalSecs <= 0 {
		return nil, fmt.Errorf("ledger_audit.interval_secs must be positive, got %d", cfg.LedgerAudit.IntervalSecs)
	}

	if cfg.Server.IsProduction() && cfg.JWT.Secret == "change-me-in-production" {
		return nil, errors.New("KHATA_JWT_SECRET must be set in production")
	}

	return cfg, nil
}

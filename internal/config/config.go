package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Mail      MailConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BaseURL               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session and credential-token parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	VerificationTTLMinutes  int
	PasswordResetTTLMinutes int
	EmailChangeTTLMinutes   int
	MinPasswordLength       int
	BcryptCost              int
}

// MailConfig holds SMTP transport values for the notifier.
type MailConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
}

// StorageConfig points at the external image host.
type StorageConfig struct {
	UploadURL      string
	APIKey         string
	TimeoutSeconds int
}

// RateLimitConfig bounds password-reset request frequency per email.
type RateLimitConfig struct {
	ResetRequestLimit         int
	ResetRequestWindowMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "tunepulse-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			BaseURL:               getEnv("APP_BASE_URL", "http://localhost:3000"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			VerificationTTLMinutes:  getEnvAsInt("AUTH_VERIFICATION_TTL_MINUTES", 10),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 5),
			EmailChangeTTLMinutes:   getEnvAsInt("AUTH_EMAIL_CHANGE_TTL_MINUTES", 60),
			MinPasswordLength:       getEnvAsInt("AUTH_MIN_PASSWORD_LENGTH", 8),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Mail: MailConfig{
			SMTPHost: getEnv("MAIL_SMTP_HOST", "smtp.gmail.com"),
			SMTPPort: getEnvAsInt("MAIL_SMTP_PORT", 587),
			Username: os.Getenv("MAIL_USER"),
			Password: os.Getenv("MAIL_PASS"),
			From:     getEnv("MAIL_FROM", "TunePulse Support <noreply@tunepulse.example>"),
		},
		Storage: StorageConfig{
			UploadURL:      getEnv("STORAGE_UPLOAD_URL", ""),
			APIKey:         os.Getenv("STORAGE_API_KEY"),
			TimeoutSeconds: getEnvAsInt("STORAGE_TIMEOUT_SECONDS", 15),
		},
		RateLimit: RateLimitConfig{
			ResetRequestLimit:         getEnvAsInt("RATE_LIMIT_RESET_REQUESTS", 3),
			ResetRequestWindowMinutes: getEnvAsInt("RATE_LIMIT_RESET_WINDOW_MINUTES", 15),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// VerificationTTL returns the verification token lifetime.
func (a AuthConfig) VerificationTTL() time.Duration {
	return time.Duration(a.VerificationTTLMinutes) * time.Minute
}

// PasswordResetTTL returns the reset token lifetime.
func (a AuthConfig) PasswordResetTTL() time.Duration {
	return time.Duration(a.PasswordResetTTLMinutes) * time.Minute
}

// EmailChangeTTL returns the email-change token lifetime.
func (a AuthConfig) EmailChangeTTL() time.Duration {
	return time.Duration(a.EmailChangeTTLMinutes) * time.Minute
}

// ResetRequestWindow returns the rate-limit window duration.
func (r RateLimitConfig) ResetRequestWindow() time.Duration {
	return time.Duration(r.ResetRequestWindowMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

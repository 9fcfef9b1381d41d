package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is the complete service configuration, read from the environment.
type Config struct {
	Environment   string `env:"APP_ENV" env-default:"development"`
	ListenAddr    string `env:"HTTP_ADDR" env-default:":4000"`
	LogLevel      string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat     string `env:"LOG_FORMAT" env-default:"text"`
	Store         string `env:"STORE" env-default:"postgres"`
	MigrationsDir string `env:"MIGRATIONS_DIR" env-default:"migrations"`

	Database  DatabaseConfig
	JWT       JWTConfig
	User      UserConfig
	Page      PageConfig
	RateLimit RateLimitConfig
}

// IsProduction reports whether internal error detail must be hidden from clients.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate checks values that cleanenv cannot check on its own.
func (c Config) Validate() error {
	return validation.Errors{
		"STORE":                 validation.Validate(c.Store, validation.In(StorePostgres, StoreMemory)),
		"JWT_SECRET":            validation.Validate(c.JWT.Secret, validation.Required),
		"ACCESS_TOKEN_EXPIRY":   validation.Validate(int64(c.JWT.AccessTokenExpiry), validation.Min(int64(1))),
		"DEFAULT_ROLE":          validation.Validate(c.User.DefaultRole, validation.Required),
		"ADMIN_ROLE":            validation.Validate(c.User.AdminRole, validation.Required),
		"PASSWORD_MIN_LENGTH":   validation.Validate(c.User.MinPasswordLength, validation.Min(1)),
		"PASSWORD_HASH_COST":    validation.Validate(c.User.PasswordHashCost, validation.Min(4), validation.Max(31)),
		"PAGE_SIZE_DEFAULT":     validation.Validate(c.Page.DefaultPageSize, validation.Min(1)),
		"PAGE_SIZE_MAX":         validation.Validate(c.Page.MaxPageSize, validation.Min(c.Page.DefaultPageSize)),
		"AUTH_RATE_LIMIT_BURST": validation.Validate(c.RateLimit.Burst, validation.When(c.RateLimit.PerMinute > 0, validation.Min(1))),
		"ADMIN_PASSWORD":        validation.Validate(c.User.AdminPassword, validation.When(c.User.AdminUserName != "", validation.Required)),
		"ADMIN_EMAIL":           validation.Validate(c.User.AdminEmail, validation.When(c.User.AdminUserName != "", validation.Required)),
	}.Filter()
}

// Load reads an optional .env file and then the environment into a Config.
func Load(envFile string) (Config, error) {
	loadEnvFile(envFile)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadEnvFile(envFile string) {
	if envFile == "" {
		return
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Debug("No .env file found (using environment variables or defaults)", "path", envFile)
		return
	}

	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents the server configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Security  SecurityConfig  `json:"security"`
	Email     EmailConfig     `json:"email"`
	Frontend  FrontendConfig  `json:"frontend"`
	Dashboard DashboardConfig `json:"dashboard"`
	Digest    DigestConfig    `json:"digest"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	CORSOrigins     []string      `json:"cors_origins"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver         string        `json:"driver"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
	AutoMigrate    bool          `json:"auto_migrate"`
}

// SecurityConfig holds token signing and the bootstrap account.
type SecurityConfig struct {
	JWTSecret     string        `json:"jwt_secret"`
	TokenTTL      time.Duration `json:"token_ttl"`
	AdminEmail    string        `json:"admin_email"`
	AdminPassword string        `json:"admin_password"`
}

// EmailConfig selects how notification mail leaves the system. An empty
// provider disables mail.
type EmailConfig struct {
	Provider    string `json:"provider"` // "ses", "log" or ""
	Region      string `json:"region"`
	FromAddress string `json:"from_address"`
	FromName    string `json:"from_name"`
	AdminEmail  string `json:"admin_email"`
}

func (c EmailConfig) Enabled() bool {
	return c.Provider != ""
}

// FrontendConfig is used to build links in notification mail.
type FrontendConfig struct {
	BaseURL string `json:"base_url"`
}

type DashboardConfig struct {
	CacheTTL time.Duration `json:"cache_ttl"`
}

// DigestConfig schedules the pending-review digest.
type DigestConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// LoggingConfig
type LoggingConfig struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:         DriverPostgres,
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "uia_atlas",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    30 * time.Minute,
			AutoMigrate:    true,
		},
		Security: SecurityConfig{
			TokenTTL: 30 * time.Minute,
		},
		Email: EmailConfig{
			FromName: "UIA SDG Atlas",
		},
		Frontend: FrontendConfig{
			BaseURL: "http://localhost:5173",
		},
		Dashboard: DashboardConfig{
			CacheTTL: 5 * time.Minute,
		},
		Digest: DigestConfig{
			Schedule: "0 8 * * 1-5",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from file and environment variables. A
// .env file in the working directory is read first when present.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("SERVER_HOST", &config.Server.Host)
	num("SERVER_PORT", &config.Server.Port)
	dur("SERVER_SHUTDOWN_TIMEOUT", &config.Server.ShutdownTimeout)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		config.Server.CORSOrigins = splitList(origins)
	}

	str("DATABASE_DRIVER", &config.Database.Driver)
	str("DATABASE_HOST", &config.Database.Host)
	num("DATABASE_PORT", &config.Database.Port)
	str("DATABASE_USER", &config.Database.User)
	str("DATABASE_PASSWORD", &config.Database.Password)
	str("DATABASE_DBNAME", &config.Database.DBName)
	str("DATABASE_SSLMODE", &config.Database.SSLMode)
	flag("DATABASE_AUTO_MIGRATE", &config.Database.AutoMigrate)

	str("JWT_SECRET", &config.Security.JWTSecret)
	dur("TOKEN_TTL", &config.Security.TokenTTL)
	str("ADMIN_EMAIL", &config.Security.AdminEmail)
	str("ADMIN_PASSWORD", &config.Security.AdminPassword)

	str("EMAIL_PROVIDER", &config.Email.Provider)
	str("AWS_REGION", &config.Email.Region)
	str("EMAIL_FROM_ADDRESS", &config.Email.FromAddress)
	str("EMAIL_FROM_NAME", &config.Email.FromName)
	str("EMAIL_ADMIN", &config.Email.AdminEmail)

	str("FRONTEND_URL", &config.Frontend.BaseURL)
	dur("DASHBOARD_CACHE_TTL", &config.Dashboard.CacheTTL)
	flag("DIGEST_ENABLED", &config.Digest.Enabled)
	str("DIGEST_SCHEDULE", &config.Digest.Schedule)

	str("LOG_LEVEL", &config.Logging.Level)
	flag("LOG_DEVELOPMENT", &config.Logging.Development)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver))
	}
	if c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwt_secret is required"))
	}
	switch c.Email.Provider {
	case "", "log":
	case "ses":
		if c.Email.FromAddress == "" {
			errs = append(errs, errors.New("email.from_address is required for the ses provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown email.provider %q", c.Email.Provider))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	return errors.Join(errs...)
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewLogger builds the process logger.
func (c LoggingConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

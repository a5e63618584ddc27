package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"service-crm/internal/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultApiPort  = "9080"
	DefaultTimezone = "America/Lima"
)

type Config struct {
	// HTTP Server
	ApiPort         string
	CertFilePath    string
	KeyFilePath     string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	WebUiUrl        string

	// Database
	DBDriver    string
	DataPath    string
	DBPath      string
	DatabaseURL string
	DBMaxConns  int
	Timezone    string

	// Sessions
	JWTSecret string
	JWTTTL    time.Duration

	// Logging
	LogLevel string
	LogDev   bool
	LogFile  string

	SnowflakeNode int64

	// AMQP, events are only published when AMQPURL is set
	AMQPURL      string
	AMQPExchange string

	OIDC OIDCConfig
}

// OIDCConfig holds the optional OpenID Connect client settings.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	LogoutURL    string // optional end-session endpoint
}

// Enabled reports whether every OIDC setting is present.
func (o OIDCConfig) Enabled() bool {
	return o.IssuerURL != "" && o.ClientID != "" && o.ClientSecret != "" && o.RedirectURI != ""
}

// Load reads the configuration from the environment.
func Load() *Config {
	dataPath := getEnv("DATA_STORAGE_PATH", "./data")
	cfg := &Config{
		ApiPort:         getEnv("API_PORT", DefaultApiPort),
		CertFilePath:    getEnv("CERT_FILE_PATH", ""),
		KeyFilePath:     getEnv("KEY_FILE_PATH", ""),
		CORSOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		WebUiUrl:        getEnv("WEB_UI_BASE_URL", "http://localhost:5173"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DataPath:    dataPath,
		DBPath:      getEnv("DB_PATH", filepath.Join(dataPath, "database", "service-crm.db")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		Timezone:    getEnv("TIMEZONE", DefaultTimezone),

		JWTSecret: getEnv("JWT_SECRET", getEnv("JWT_TOKEN", "")),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", ""),
		LogDev:   getEnv("LOG_DEV", "") == "1",
		LogFile:  getEnv("LOG_FILE", ""),

		SnowflakeNode: int64(getEnvInt("SNOWFLAKE_NODE", 1)),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "crm.events"),

		OIDC: OIDCConfig{
			IssuerURL:    getEnv("OIDC_ISSUER", ""),
			ClientID:     getEnv("OIDC_CLIENT_ID", ""),
			ClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("OIDC_REDIRECT_URI", ""),
			LogoutURL:    getEnv("OIDC_LOGOUT_URL", ""),
		},
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
		if cfg.LogDev {
			cfg.LogLevel = "debug"
		}
	}
	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.ApiPort); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.ApiPort))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errors = append(errors, "DB_PATH cannot be empty when using the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using the postgres driver")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid database driver '%s': must be one of [%s %s]", c.DBDriver, DriverSQLite, DriverPostgres))
	}
	if c.DBMaxConns < 1 {
		errors = append(errors, fmt.Sprintf("invalid DB_MAX_CONNS %d: must be at least 1", c.DBMaxConns))
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET environment variable must be set")
	}
	if c.JWTTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid JWT_TTL %v: must be at least 1 minute", c.JWTTTL))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid TIMEZONE '%s': %v", c.Timezone, err))
	}

	if (c.CertFilePath == "") != (c.KeyFilePath == "") {
		errors = append(errors, "CERT_FILE_PATH and KEY_FILE_PATH must be set together")
	}
	for _, p := range []string{c.CertFilePath, c.KeyFilePath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("TLS file does not exist: %s", p))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SnowflakeNode < 0 || c.SnowflakeNode > 1023 {
		errors = append(errors, fmt.Sprintf("invalid SNOWFLAKE_NODE %d: must be between 0 and 1023", c.SnowflakeNode))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TokenStorePath is where the buntdb token store lives.
func (c *Config) TokenStorePath() string {
	return filepath.Join(c.DataPath, "tokenstore", "tokens.db")
}

// TLSEnabled reports whether the server should listen with TLS.
func (c *Config) TLSEnabled() bool {
	return c.CertFilePath != "" && c.KeyFilePath != ""
}

// LoggerConfig derives the logger settings.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.LogLevel, Dev: c.LogDev, File: c.LogFile}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// HTTP Server
	Port string `yaml:"port"`

	// Persistence
	DataBackend  string `yaml:"data_backend"`
	SQLiteDBPath string `yaml:"sqlite_db_path"`
	DataDir      string `yaml:"data_dir"`
	Seed         bool   `yaml:"seed"`

	// AMQP (optional notification fan-out)
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Auth
	AuthUsername     string        `yaml:"auth_username"`
	AuthPasswordHash string        `yaml:"auth_password_hash"`
	JWTSecret        string        `yaml:"jwt_secret"`
	SessionTTL       time.Duration `yaml:"session_ttl"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Telegram delivery
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   string `yaml:"telegram_chat_id"`
}

// ValidBackends lists the accepted DATA_BACKEND values.
var ValidBackends = []string{"memory", "file", "sqlite"}

// Defaults returns the configuration used when neither file nor environment
// sets a value.
func Defaults() *Config {
	return &Config{
		Port:         "8080",
		DataBackend:  "file",
		SQLiteDBPath: "./data/kepngern.db",
		DataDir:      "./data",
		Seed:         true,

		AMQPExchange: "kepngern",
		AMQPQueue:    "notifications",

		AuthUsername: "moowan06",
		SessionTTL:   24 * time.Hour,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty or missing), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)

	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.Seed = getEnvBool("SEED", c.Seed)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	c.AuthUsername = getEnv("AUTH_USERNAME", c.AuthUsername)
	c.AuthPasswordHash = getEnv("AUTH_PASSWORD_HASH", c.AuthPasswordHash)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", c.TelegramChatID)
}

// AMQPEnabled reports whether notifications should be fanned out over AMQP.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// TelegramEnabled reports whether the delivery worker can reach Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// Validate checks the settings the API server needs and returns every
// problem at once.
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	if !slices.Contains(ValidBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	case "file":
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	}

	errors = append(errors, c.validateAMQP()...)

	// Validate auth
	if c.AuthUsername == "" {
		errors = append(errors, "auth username cannot be empty")
	}
	if c.AuthPasswordHash == "" {
		errors = append(errors, "AUTH_PASSWORD_HASH is required (generate one with kepngern-hash)")
	} else if !strings.HasPrefix(c.AuthPasswordHash, "$2") {
		errors = append(errors, "AUTH_PASSWORD_HASH must be a bcrypt hash")
	}
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 characters")
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 30*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at most 30 days", c.SessionTTL))
	}

	errors = append(errors, c.validateLogging()...)

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateNotifier checks the settings of the delivery worker.
func (c *Config) ValidateNotifier() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the notifier")
	}
	errors = append(errors, c.validateAMQP()...)
	if (c.TelegramBotToken == "") != (c.TelegramChatID == "") {
		errors = append(errors, "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateAMQP() []string {
	if c.AMQPURL == "" {
		return nil
	}
	var errors []string
	if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
	} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
	}
	if c.AMQPExchange == "" {
		errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
	}
	return errors
}

func (c *Config) validateLogging() []string {
	var errors []string
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

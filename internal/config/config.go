package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr         string
	StoreDriver      string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	SQLitePath       string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	SessionStore     string
	SessionSecret    string
	GinMode          string
	OpenAIAPIKey     string
	OpenAIModel      string
	LogLevel         string
	LogDevelopment   bool
	LogFile          string
	ReminderInterval time.Duration
	NotifyChannel    string
}

// RedisAddr joins the Redis host and port.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

var defaults = map[string]any{
	"http_addr":         ":8080",
	"store_driver":      "sqlite",
	"db_host":           "localhost",
	"db_port":           "3306",
	"db_user":           "taskuser",
	"db_password":       "taskpassword",
	"db_name":           "taskboard",
	"sqlite_path":       "taskboard.db",
	"redis_host":        "localhost",
	"redis_port":        "6379",
	"redis_password":    "",
	"session_store":     "cookie",
	"session_secret":    "default-secret-key-change-me",
	"gin_mode":          "debug",
	"openai_api_key":    "",
	"openai_model":      "gpt-4o-mini",
	"log_level":         "info",
	"log_development":   false,
	"log_file":          "",
	"reminder_interval": "5m",
	"notify_channel":    "taskboard:notifications",
}

// Load reads configuration from the environment and, when present, from a
// taskboard.yaml in configDir. Environment variables win.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configDir != "" {
		v.SetConfigName("taskboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading taskboard.yaml: %w", err)
			}
		}
	}

	cfg := &Config{
		HTTPAddr:         v.GetString("http_addr"),
		StoreDriver:      v.GetString("store_driver"),
		DBHost:           v.GetString("db_host"),
		DBPort:           v.GetString("db_port"),
		DBUser:           v.GetString("db_user"),
		DBPassword:       v.GetString("db_password"),
		DBName:           v.GetString("db_name"),
		SQLitePath:       v.GetString("sqlite_path"),
		RedisHost:        v.GetString("redis_host"),
		RedisPort:        v.GetString("redis_port"),
		RedisPassword:    v.GetString("redis_password"),
		SessionStore:     v.GetString("session_store"),
		SessionSecret:    v.GetString("session_secret"),
		GinMode:          v.GetString("gin_mode"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		OpenAIModel:      v.GetString("openai_model"),
		LogLevel:         v.GetString("log_level"),
		LogDevelopment:   v.GetBool("log_development"),
		LogFile:          v.GetString("log_file"),
		ReminderInterval: v.GetDuration("reminder_interval"),
		NotifyChannel:    v.GetString("notify_channel"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown driver names.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite", "mysql", "postgres", "redis":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.SessionStore {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.ReminderInterval < 0 {
		return fmt.Errorf("REMINDER_INTERVAL must not be negative")
	}
	return nil
}

// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	BasicAuth BasicAuthConfig `mapstructure:"basic_auth"`
	Slack     SlackConfig     `mapstructure:"slack"`
	Google    GoogleConfig    `mapstructure:"google"`
	Timezones TimezonesConfig `mapstructure:"timezones"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Environment     string `mapstructure:"environment"`
	ResponseTimeout int    `mapstructure:"response_timeout"` // seconds, whole-pipeline budget
}

// BasicAuthConfig protects the Dialogflow webhook and the report endpoint.
type BasicAuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SlackConfig contains Slack API authentication and routing settings.
type SlackConfig struct {
	Token               string `mapstructure:"token"`
	SigningSecret       string `mapstructure:"signing_secret"`
	AnnouncementChannel string `mapstructure:"announcement_channel"`
}

// GoogleConfig contains Google Calendar service-account credentials.
type GoogleConfig struct {
	ClientEmail string `mapstructure:"client_email"`
	PrivateKey  string `mapstructure:"private_key"` // PEM, PKCS#8
	CalendarID  string `mapstructure:"calendar_id"`
}

// TimezonesConfig names the zone Dialogflow timestamps are expressed in and the
// zone absence periods are normalized and rendered in.
type TimezonesConfig struct {
	Dialogflow string `mapstructure:"dialogflow"`
	HQ         string `mapstructure:"hq"`
}

// RedisConfig contains the optional interactive-action dedup store settings.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds a delivery marker is kept
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/absence-bot/")
	}

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.response_timeout", 25)
	v.SetDefault("timezones.dialogflow", "UTC")
	v.SetDefault("timezones.hq", "Europe/Warsaw")
	v.SetDefault("redis.ttl", 3600)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// Bind specific environment variables (explicit bindings for 12-factor app compliance)
	// Server configuration
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "APP_ENV", "SERVER_ENVIRONMENT")
	_ = v.BindEnv("server.response_timeout", "SERVER_RESPONSE_TIMEOUT")

	// Basic auth configuration
	_ = v.BindEnv("basic_auth.username", "BASIC_AUTH_USERNAME")
	_ = v.BindEnv("basic_auth.password", "BASIC_AUTH_PASSWORD")

	// Slack configuration
	_ = v.BindEnv("slack.token", "SLACK_AUTH_TOKEN")
	_ = v.BindEnv("slack.signing_secret", "SLACK_SIGNING_SECRET")
	_ = v.BindEnv("slack.announcement_channel", "SLACK_ANNOUNCEMENT_CHANNEL")

	// Google configuration
	_ = v.BindEnv("google.client_email", "GOOGLE_CLIENT_EMAIL")
	_ = v.BindEnv("google.private_key", "GOOGLE_PRIVATE_KEY")
	_ = v.BindEnv("google.calendar_id", "GOOGLE_CALENDAR_ID")

	// Timezone configuration
	_ = v.BindEnv("timezones.dialogflow", "DIALOGFLOW_TIMEZONE")
	_ = v.BindEnv("timezones.hq", "HQ_TIMEZONE")

	// Redis configuration
	_ = v.BindEnv("redis.enabled", "REDIS_ENABLED")
	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("redis.ttl", "REDIS_TTL")

	// Metrics configuration
	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("metrics.path", "METRICS_PATH")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	if err := v.ReadInConfig(); err != nil {
		// A config file is optional as long as the environment provides the values.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Slack.Token == "" {
		return fmt.Errorf("slack.token is required")
	}
	if c.Slack.SigningSecret == "" {
		return fmt.Errorf("slack.signing_secret is required")
	}
	if c.Slack.AnnouncementChannel == "" {
		return fmt.Errorf("slack.announcement_channel is required")
	}
	if c.Google.ClientEmail == "" {
		return fmt.Errorf("google.client_email is required")
	}
	if c.Google.PrivateKey == "" {
		return fmt.Errorf("google.private_key is required")
	}
	if c.Google.CalendarID == "" {
		return fmt.Errorf("google.calendar_id is required")
	}
	if c.BasicAuth.Username == "" || c.BasicAuth.Password == "" {
		return fmt.Errorf("basic_auth.username and basic_auth.password are required")
	}
	if c.Server.ResponseTimeout <= 0 {
		return fmt.Errorf("server.response_timeout must be positive")
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis.host is required when redis is enabled")
	}
	if _, err := c.Timezones.DialogflowLocation(); err != nil {
		return fmt.Errorf("timezones.dialogflow: %w", err)
	}
	if _, err := c.Timezones.HQLocation(); err != nil {
		return fmt.Errorf("timezones.hq: %w", err)
	}
	return nil
}

// ResponseBudget returns the whole-pipeline response timeout as a duration.
func (c *ServerConfig) ResponseBudget() time.Duration {
	return time.Duration(c.ResponseTimeout) * time.Second
}

// DialogflowLocation returns the zone NLU timestamps are interpreted in.
func (c *TimezonesConfig) DialogflowLocation() (*time.Location, error) {
	return time.LoadLocation(c.Dialogflow)
}

// HQLocation returns the zone absence periods are normalized and rendered in.
func (c *TimezonesConfig) HQLocation() (*time.Location, error) {
	return time.LoadLocation(c.HQ)
}

// Addr returns the host:port address of the Redis server.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DeliveryTTL returns how long an interactive-action delivery marker is kept.
func (c *RedisConfig) DeliveryTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

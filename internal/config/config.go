package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Email  EmailConfig  `mapstructure:"email" yaml:"email"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// EmailConfig holds email sending configuration
type EmailConfig struct {
	// Provider is the delivery provider: "sendgrid" or "log"
	Provider string `mapstructure:"provider" yaml:"provider"`
	// From is the sender identity stamped on every outgoing message
	From SenderConfig `mapstructure:"from" yaml:"from"`
	// SendGrid holds SendGrid-specific configuration
	SendGrid SendGridConfig `mapstructure:"sendgrid" yaml:"sendgrid"`
}

// SenderConfig is the fixed "From" identity
type SenderConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
	Name    string `mapstructure:"name" yaml:"name"`
}

// SendGridConfig holds SendGrid API configuration
type SendGridConfig struct {
	// APIKey is sent as a bearer token on every Mail Send call
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	// BaseURL is the API host, overridable for sandboxes and tests
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// Redacted returns a copy that is safe to print
func (c Config) Redacted() Config {
	if c.Email.SendGrid.APIKey != "" {
		c.Email.SendGrid.APIKey = redact(c.Email.SendGrid.APIKey)
	}
	return c
}

func redact(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", 8)
}

// Load reads configuration from file and environment variables.
// An empty path searches the default locations; a missing file there is not an error.
func Load(path string) (*Store, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mailrelay")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("MAILRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// SENDGRID_API_KEY is the name most deployments already export
	if err := v.BindEnv("email.sendgrid.api_key", "MAILRELAY_EMAIL_SENDGRID_API_KEY", "SENDGRID_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	s := &Store{v: v}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Email.Provider = strings.ToLower(strings.TrimSpace(cfg.Email.Provider))
	cfg.Email.SendGrid.BaseURL = strings.TrimSuffix(cfg.Email.SendGrid.BaseURL, "/")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Email defaults
	v.SetDefault("email.provider", "sendgrid")
	v.SetDefault("email.from.address", "your-email@example.com")
	v.SetDefault("email.from.name", "Your Name")
	v.SetDefault("email.sendgrid.api_key", "")
	v.SetDefault("email.sendgrid.base_url", "https://api.sendgrid.com")
}

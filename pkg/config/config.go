package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Stream StreamConfig `mapstructure:"stream"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Hunt   HuntConfig   `mapstructure:"hunt"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig holds the control API server configuration
type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// StreamConfig holds the persistent player channel configuration.
// The stream listener is addressed independently from the control API.
type StreamConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	PingInterval     time.Duration `mapstructure:"ping_interval"`
	IdleDeadline     time.Duration `mapstructure:"idle_deadline"`
	SendBufferSize   int           `mapstructure:"send_buffer_size"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	MaxMessageBytes  int64         `mapstructure:"max_message_bytes"`
	ReadBufferBytes  int           `mapstructure:"read_buffer_bytes"`
	WriteBufferBytes int           `mapstructure:"write_buffer_bytes"`
}

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// HuntConfig holds game-specific configuration
type HuntConfig struct {
	SelectionInterval  time.Duration `mapstructure:"selection_interval"`
	ProximityThreshold float64       `mapstructure:"proximity_threshold_meters"`
	ProfileTimeout     time.Duration `mapstructure:"profile_timeout"`
	ProfileCacheTTL    time.Duration `mapstructure:"profile_cache_ttl"`
	TokenSecret        string        `mapstructure:"token_secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
	Encoding    string `mapstructure:"encoding"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/foxhunt")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file is optional; env vars and defaults are enough
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.environment", "development")

	viper.SetDefault("stream.host", "0.0.0.0")
	viper.SetDefault("stream.port", 8081)
	viper.SetDefault("stream.ping_interval", "30s")
	viper.SetDefault("stream.idle_deadline", "90s")
	viper.SetDefault("stream.send_buffer_size", 64)
	viper.SetDefault("stream.write_timeout", "10s")
	viper.SetDefault("stream.max_message_bytes", 65536)
	viper.SetDefault("stream.read_buffer_bytes", 1024)
	viper.SetDefault("stream.write_buffer_bytes", 1024)

	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.dial_timeout", "5s")
	viper.SetDefault("redis.read_timeout", "3s")
	viper.SetDefault("redis.write_timeout", "3s")

	viper.SetDefault("hunt.selection_interval", "5m")
	viper.SetDefault("hunt.proximity_threshold_meters", 100.0)
	viper.SetDefault("hunt.profile_timeout", "3s")
	viper.SetDefault("hunt.profile_cache_ttl", "1m")
	viper.SetDefault("hunt.token_secret", "dev-scan-token-secret")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.environment", "development")
	viper.SetDefault("log.encoding", "console")
}

// validateConfig validates the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Stream.Port < 1 || cfg.Stream.Port > 65535 {
		return fmt.Errorf("invalid stream port: %d", cfg.Stream.Port)
	}

	if cfg.Server.Port == cfg.Stream.Port {
		return fmt.Errorf("server and stream listeners must use distinct ports, both set to %d", cfg.Server.Port)
	}

	if cfg.Redis.URL == "" {
		return fmt.Errorf("redis url cannot be empty")
	}

	if cfg.Hunt.SelectionInterval < time.Second {
		return fmt.Errorf("selection interval must be at least 1 second")
	}

	if cfg.Hunt.ProximityThreshold <= 0 {
		return fmt.Errorf("proximity threshold must be positive, got %f", cfg.Hunt.ProximityThreshold)
	}

	if cfg.Hunt.ProfileTimeout <= 0 {
		return fmt.Errorf("profile timeout must be positive")
	}

	if len(cfg.Hunt.TokenSecret) < 8 {
		return fmt.Errorf("scan token secret must be at least 8 characters long")
	}

	if cfg.Stream.PingInterval <= 0 || cfg.Stream.IdleDeadline <= cfg.Stream.PingInterval {
		return fmt.Errorf("stream idle deadline must exceed ping interval")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, cfg.Log.Level) {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}

	validEncodings := []string{"json", "console"}
	if !contains(validEncodings, cfg.Log.Encoding) {
		return fmt.Errorf("invalid log encoding: %s", cfg.Log.Encoding)
	}

	return nil
}

// GetServerAddr returns the control API address in host:port format
func (s *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetStreamAddr returns the stream listener address in host:port format
func (s *StreamConfig) GetStreamAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction returns true if the environment is production
func (s *ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}

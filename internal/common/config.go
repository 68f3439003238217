package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Jobs   JobsConfig
	Vision VisionConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr        string
	MaxUploadMB int
}

// JobsConfig holds worker pool and job retention configuration
type JobsConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
	Retention   time.Duration
}

// VisionConfig holds Anthropic vision client configuration
type VisionConfig struct {
	Model     string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("HTTP_ADDR", ":8080"),
			MaxUploadMB: getEnvAsInt("MAX_UPLOAD_MB", 100),
		},
		Jobs: JobsConfig{
			Workers:     getEnvAsInt("JOB_WORKERS", 4),
			QueueSize:   getEnvAsInt("JOB_QUEUE_SIZE", 256),
			TaskTimeout: getEnvAsDuration("TASK_TIMEOUT", 3*time.Minute),
			Retention:   getEnvAsDuration("JOB_RETENTION", time.Hour),
		},
		Vision: VisionConfig{
			Model:     getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			MaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 2000),
			Timeout:   getEnvAsDuration("ANTHROPIC_TIMEOUT", 45*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Vision.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "ANTHROPIC_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Jobs.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "JOB_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

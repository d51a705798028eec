package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// LLMConfig contains the generation endpoint and retry settings.
type LLMConfig struct {
	GeminiAPIKey   string        `mapstructure:"gemini_api_key" validate:"required"`
	ModelName      string        `mapstructure:"model_name" validate:"required"`
	MaxAttempts    int           `mapstructure:"max_attempts" validate:"required,gte=1,lte=10"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" validate:"gte=0"`
	// AutoSummarize controls whether text documents are summarized on upload.
	// When false they become ready immediately with truncated content as summary.
	AutoSummarize bool `mapstructure:"auto_summarize"`
}

// DatabaseConfig selects the Postgres store. An empty URL keeps everything in memory.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// RedisConfig enables event notifications over Redis pub/sub when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Channel  string `mapstructure:"channel" validate:"required_with=Addr"`
}

// TaskConfig sizes the background worker pool.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gte=1"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gte=1"`
}

// SeedConfig points at an optional YAML file of classes and documents loaded at startup.
type SeedConfig struct {
	Path string `mapstructure:"path"`
}

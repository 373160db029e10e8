package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the assistant service.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits for context imports
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// LLM
	LLMProvider    string  `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" (any chat-completions compatible endpoint)
	OpenAIKey      string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string  `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel       string  `env:"LLM_MODEL" envDefault:"gpt-3.5-turbo"`
	LLMMaxTokens   int64   `env:"LLM_MAX_TOKENS" envDefault:"1000"`
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`

	// Context store
	ContextProvider  string `env:"CONTEXT_PROVIDER" envDefault:"memory"` // "memory", "redis" or "postgres"
	ContextKey       string `env:"CONTEXT_KEY" envDefault:"rag:context"`
	RedisAddr        string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	DBURL            string `env:"DB_URL"`
	ContextTable     string `env:"CONTEXT_TABLE" envDefault:"context_imports"`
	ContextWatchFile string `env:"CONTEXT_WATCH_FILE"`

	// Turn events
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"none"` // "none" or "nats"
	QueueURL       string `env:"QUEUE_URL"`
	EventsSubject  string `env:"EVENTS_SUBJECT" envDefault:"turns"`

	// Dictionary assets
	DictionaryDir string `env:"DICTIONARY_DIR" envDefault:"assets/dictionary"`

	// Language pair used before a caller picks one
	DefaultMyLanguage     string `env:"DEFAULT_MY_LANGUAGE" envDefault:"English"`
	DefaultTargetLanguage string `env:"DEFAULT_TARGET_LANGUAGE" envDefault:"Korean"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

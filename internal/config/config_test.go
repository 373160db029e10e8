package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Save original env and restore after test
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i, c := range env {
				if c == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}()

	os.Clearenv()

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LLMProvider", cfg.LLMProvider, "openai"},
		{"LLMModel", cfg.LLMModel, "gpt-3.5-turbo"},
		{"LLMMaxTokens", cfg.LLMMaxTokens, int64(1000)},
		{"LLMTemperature", cfg.LLMTemperature, 0.7},
		{"OpenAIBaseURL", cfg.OpenAIBaseURL, "https://api.openai.com/v1"},
		{"OpenAIKey", cfg.OpenAIKey, ""},
		{"ContextProvider", cfg.ContextProvider, "memory"},
		{"ContextKey", cfg.ContextKey, "rag:context"},
		{"ContextTable", cfg.ContextTable, "context_imports"},
		{"EventsProvider", cfg.EventsProvider, "none"},
		{"EventsSubject", cfg.EventsSubject, "turns"},
		{"DictionaryDir", cfg.DictionaryDir, "assets/dictionary"},
		{"DefaultMyLanguage", cfg.DefaultMyLanguage, "English"},
		{"DefaultTargetLanguage", cfg.DefaultTargetLanguage, "Korean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_TEMPERATURE", "0.2")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
	if cfg.OpenAIKey != "sk-test" {
		t.Errorf("expected api key from env, got %q", cfg.OpenAIKey)
	}
	if cfg.LLMTemperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", cfg.LLMTemperature)
	}
}

func TestLoadProviderOverrides(t *testing.T) {
	t.Setenv("CONTEXT_PROVIDER", "redis")
	t.Setenv("EVENTS_PROVIDER", "nats")

	cfg := Load()

	if cfg.ContextProvider != "redis" {
		t.Errorf("expected context provider 'redis', got %s", cfg.ContextProvider)
	}
	if cfg.EventsProvider != "nats" {
		t.Errorf("expected events provider 'nats', got %s", cfg.EventsProvider)
	}
}

package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"github.com/valkyrie8787/llm-dictionary/internal/completion"
	"github.com/valkyrie8787/llm-dictionary/internal/config"
	"github.com/valkyrie8787/llm-dictionary/internal/dictionary"
	"github.com/valkyrie8787/llm-dictionary/internal/events"
	"github.com/valkyrie8787/llm-dictionary/internal/importer"
	"github.com/valkyrie8787/llm-dictionary/internal/logger"
	"github.com/valkyrie8787/llm-dictionary/internal/qa"
	"github.com/valkyrie8787/llm-dictionary/internal/ragcontext"
)

// Deps bundles the runtime dependencies of the assistant service.
type Deps struct {
	Config      config.Config
	Log         *slog.Logger
	Context     ragcontext.Store
	LLM         completion.Client
	Coordinator *qa.Coordinator
	Importer    *importer.Importer
	Dictionary  *dictionary.Loader
	Events      events.Publisher

	closers []func() error
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel)
	return BuildWith(cfg, log)
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return config.Load(), nil
}

// BuildWith wires components from an already loaded config.
func BuildWith(cfg config.Config, log *slog.Logger) (Deps, error) {
	d := Deps{Config: cfg, Log: log}

	st, closeStore, err := buildContextStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize context store: %w", err)
	}
	d.Context = st
	if closeStore != nil {
		d.closers = append(d.closers, closeStore)
	}

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		_ = d.Close()
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	d.LLM = llmClient

	pub, err := buildEvents(cfg, log)
	if err != nil {
		_ = d.Close()
		return Deps{}, fmt.Errorf("failed to initialize events: %w", err)
	}
	d.Events = pub
	d.closers = append(d.closers, pub.Close)

	d.Coordinator = qa.NewCoordinator(d.LLM, d.Context, log.With("component", "qa"),
		qa.WithLanguages(cfg.DefaultMyLanguage, cfg.DefaultTargetLanguage))
	d.Importer = importer.New(d.Context, log.With("component", "importer"))
	d.Dictionary = dictionary.NewLoader(os.DirFS(cfg.DictionaryDir))
	return d, nil
}

// Close stops the coordinator and releases connections in reverse order.
func (d Deps) Close() error {
	if d.Coordinator != nil {
		d.Coordinator.Close()
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildContextStore(cfg config.Config, log *slog.Logger) (ragcontext.Store, func() error, error) {
	switch cfg.ContextProvider {
	case "memory", "":
		log.Info("using in-memory context store")
		return ragcontext.NewMemoryStore(), nil, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, nil, fmt.Errorf("REDIS_ADDR is required when CONTEXT_PROVIDER=redis")
		}
		st, err := ragcontext.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.ContextKey)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using Redis context store", "addr", cfg.RedisAddr, "key", cfg.ContextKey)
		return st, st.Close, nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, nil, fmt.Errorf("DB_URL is required when CONTEXT_PROVIDER=postgres")
		}
		st, err := ragcontext.NewPostgres(cfg.DBURL, cfg.ContextTable)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres context store", "table", cfg.ContextTable)
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("invalid CONTEXT_PROVIDER: %s (valid options: memory, redis, postgres)", cfg.ContextProvider)
	}
}

func buildLLM(cfg config.Config, log *slog.Logger) (completion.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		log.Info("using OpenAI completion client", "model", cfg.LLMModel, "base_url", cfg.OpenAIBaseURL)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

// NewOpenAIClient builds the chat-completions client described by cfg. It
// serves both question answering and dictionary generation.
func NewOpenAIClient(cfg config.Config) (*completion.OpenAIClient, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}
	client, err := completion.NewOpenAIClient(completion.Options{
		APIKey:      cfg.OpenAIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       openai.ChatModel(cfg.LLMModel),
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: &cfg.LLMTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return client, nil
}

func buildEvents(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsProvider {
	case "none", "":
		return events.NewNoOp(), nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when EVENTS_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("publishing turn events to NATS", "subject", cfg.EventsSubject)
		return events.NewNATS(log, nc, cfg.EventsSubject), nil
	default:
		return nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: none, nats)", cfg.EventsProvider)
	}
}

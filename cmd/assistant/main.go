package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/valkyrie8787/llm-dictionary/internal/app"
	"github.com/valkyrie8787/llm-dictionary/internal/events"
	"github.com/valkyrie8787/llm-dictionary/internal/httputil"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	relayBuffer     = 16
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = runAndClose(ctx, deps)
	stop()
	if err != nil {
		deps.Log.Error("assistant stopped", "err", err)
		os.Exit(1)
	}
}

// runAndClose runs the service and releases deps however it ends.
func runAndClose(ctx context.Context, deps app.Deps) error {
	runErr := run(ctx, deps)
	if err := deps.Close(); err != nil {
		deps.Log.Error("failed to release dependencies", "err", err)
	}
	return runErr
}

func run(ctx context.Context, deps app.Deps) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	states, unsubscribe := deps.Coordinator.Subscribe(relayBuffer)
	defer unsubscribe()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Log.Info("assistant listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		deps.Log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		events.Relay(ctx, states, deps.Events, deps.Log.With("component", "events"))
		return nil
	})

	if path := deps.Config.ContextWatchFile; path != "" {
		g.Go(func() error {
			if err := deps.Importer.Watch(ctx, path); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("context watcher failed: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log, requestTimeout)

	r.Post("/api/questions", questionHandler(deps))
	r.Get("/api/turn", turnHandler(deps))
	r.Get("/api/answer", answerHandler(deps))

	r.Route("/api/context", func(r chi.Router) {
		r.Get("/", getContextHandler(deps))
		r.Put("/", setContextHandler(deps))
		r.Delete("/", clearContextHandler(deps))
		r.Post("/upload", uploadContextHandler(deps))
	})

	r.Post("/api/recognition-errors", recognitionErrorHandler(deps))

	r.Route("/api/dictionaries", func(r chi.Router) {
		r.Get("/", listDictionariesHandler(deps))
		r.Get("/{name}", dictionaryHandler(deps))
		r.Get("/{name}/entries", dictionaryEntriesHandler(deps))
	})

	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

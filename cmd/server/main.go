package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medch24/planpei/internal/ai"
	"github.com/medch24/planpei/internal/exam"
	"github.com/medch24/planpei/internal/export"
	"github.com/medch24/planpei/internal/fetch"
	"github.com/medch24/planpei/internal/plan"
	"github.com/medch24/planpei/internal/platform/cache"
	"github.com/medch24/planpei/internal/platform/config"
	"github.com/medch24/planpei/internal/platform/database"
	"github.com/medch24/planpei/internal/reference"
	"github.com/medch24/planpei/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srvDeps, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      srvDeps.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// buildServer wires providers, stores and exporters from configuration.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*server, func(), error) {
	ref, err := reference.Load(cfg.ReferencePath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading reference data: %w", err)
	}

	// Groq first: it is the faster provider, Gemini backs it up.
	router := ai.NewRouter()
	if cfg.AI.Groq.APIKey != "" {
		router.Register("groq", ai.NewGroqProvider(cfg.AI.Groq.APIKey))
	}
	if cfg.AI.Google.APIKey != "" {
		router.Register("google", ai.NewGoogleProvider(cfg.AI.Google.APIKey))
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var st store.Store = store.NewMemoryStore()
	var db *database.DB
	if cfg.Database.URL != "" {
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		cleanups = append(cleanups, db.Close)

		pg := store.NewPostgresStore(db.Pool)
		if err := pg.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		st = pg
	}

	loaderOpts := []fetch.Option{}
	var cch *cache.Cache
	if cfg.Cache.URL != "" {
		cch, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connecting to cache: %w", err)
		}
		cleanups = append(cleanups, func() { cch.Close() })
		loaderOpts = append(loaderOpts,
			fetch.WithCache(cch, time.Duration(cfg.Cache.TemplateTTL)*time.Minute))
	}

	return &server{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		db:       db,
		cache:    cch,
		ref:      ref,
		planGen:  plan.NewGenerator(router, ref, logger),
		examGen:  exam.NewGenerator(router, logger),
		loader:   fetch.NewLoader(logger, loaderOpts...),
		exporter: export.NewExporter(logger),
	}, cleanup, nil
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

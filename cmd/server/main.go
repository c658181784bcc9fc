package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garnizeh/vagas/api"
	dbfs "github.com/garnizeh/vagas/db"
	"github.com/garnizeh/vagas/internal/config"
	"github.com/garnizeh/vagas/internal/db"
	"github.com/garnizeh/vagas/internal/jobs"
	"github.com/garnizeh/vagas/internal/profiler"
	"github.com/garnizeh/vagas/internal/records"
	"github.com/garnizeh/vagas/internal/repository/sqlite"
	"github.com/garnizeh/vagas/pkg/ollama"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	api.SetLogger(logger)
	ollama.SetLogger(logger)
	records.SetLogger(logger)
	profiler.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server exited")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// openDatabase opens the SQLite file and applies pending migrations when
// cfg.MigrateOnStart is set.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.DB, error) {
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return database, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting vagas server", slog.String("version", version), slog.String("build_time", buildTime))

	database, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	repo := sqlite.New(database, logger)
	jobRepo := jobs.NewRepository(database)

	opts := []records.Option{records.WithMaxSlugAttempts(cfg.Slug.MaxAttempts)}
	var pool *jobs.WorkerPool
	if cfg.Profiler.Enabled {
		opts = append(opts, records.WithProfileEnqueuer(profiler.NewEnqueuer(jobRepo, cfg.Profiler.MaxAttempts)))
	}
	store := records.NewStore(repo, repo, opts...)

	if cfg.Profiler.Enabled {
		client, err := ollama.NewDefaultClient(cfg.Ollama)
		if err != nil {
			return fmt.Errorf("ollama client: %w", err)
		}
		defer client.Close()

		if err := client.Health(ctx); err != nil {
			logger.Warn("ollama not reachable at startup; profile jobs will retry", slog.String("error", err.Error()))
		}

		p := profiler.New(store, client, cfg.Profiler.Model, cfg.Profiler.Template)
		pool = jobs.NewWorkerPool(jobRepo, p.Handlers(), logger, cfg.Profiler.Workers)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.SetupRoutes(cfg, version, buildTime, store, repo),
		ReadTimeout:       cfg.APITimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.APITimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if pool != nil {
		g.Go(func() error {
			pool.Start(gctx)
			<-gctx.Done()
			pool.Stop()
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

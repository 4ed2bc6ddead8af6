package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alorle/iptv-catalog/config"
	"github.com/alorle/iptv-catalog/internal/adapter/driven"
	"github.com/alorle/iptv-catalog/internal/adapter/driver"
	"github.com/alorle/iptv-catalog/internal/application"
	"github.com/alorle/iptv-catalog/internal/classify"
	"github.com/alorle/iptv-catalog/internal/logger"
	port "github.com/alorle/iptv-catalog/internal/port/driven"
	"github.com/alorle/iptv-catalog/internal/scheduler"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer log.Close()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("iptv-catalog stopped with error")
		_ = log.Close()
		os.Exit(1)
	}
}

func loadRules(path string) (*classify.Rules, error) {
	if path == "" {
		return classify.DefaultRules(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer f.Close()

	rules, err := classify.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	return rules, nil
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info().
		Str("addr", cfg.Server.Address()).
		Str("log_level", cfg.Logging.Level).
		Strs("sources", cfg.Import.Sources).
		Str("schedule", cfg.Import.Schedule).
		Str("locale", cfg.Classify.Locale).
		Str("rules_file", cfg.Classify.RulesFile).
		Msg("starting iptv-catalog")

	rules, err := loadRules(cfg.Classify.RulesFile)
	if err != nil {
		return err
	}

	classifier := classify.New(rules, classify.Options{
		CurrentYear:  time.Now().Year(),
		DefaultGenre: cfg.Classify.DefaultGenre,
		Language:     cfg.Classify.Language(),
	})

	// Create driven adapters
	repo := driven.NewCatalogMemoryRepository(classifier)
	var source port.PlaylistSource = driven.NewPlaylistHTTPSource(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes)
	if cfg.Fetch.CacheDir != "" {
		cache, err := driven.NewPlaylistFileCache(cfg.Fetch.CacheDir)
		if err != nil {
			return err
		}
		source = driven.NewFallbackPlaylistSource(source, cache, cfg.Fetch.CacheMaxAge, log.WithComponent("fetch"))
	}

	// Create application services
	importService := application.NewImportService(source, repo, classifier, log.WithComponent("import"))
	catalogService := application.NewCatalogService(repo)
	healthService := application.NewHealthService(repo)

	doc, err := driver.LoadOpenAPI()
	if err != nil {
		return err
	}

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		return err
	}
	if len(cfg.Import.Sources) > 0 && (cfg.Import.Schedule != "" || cfg.Import.RunOnStart) {
		err := sched.RegisterTask(scheduler.TaskConfig{
			ID:         "playlist-import",
			Name:       "Playlist import",
			Cron:       cfg.Import.Schedule,
			RunOnStart: cfg.Import.RunOnStart && cfg.Import.Schedule != "",
			Func: func(ctx context.Context) error {
				_, err := importService.Import(ctx, cfg.Import.Sources...)
				return err
			},
		})
		if err != nil {
			return err
		}
	}

	router := driver.NewRouter(driver.RouterConfig{
		Doc:            doc,
		Imports:        driver.NewImportHTTPHandler(importService, cfg.Fetch.MaxBytes, log.WithComponent("http")),
		Catalog:        driver.NewCatalogHTTPHandler(catalogService),
		Health:         driver.NewHealthHTTPHandler(healthService),
		Tasks:          driver.NewTaskHTTPHandler(sched),
		MaxUploadBytes: cfg.Fetch.MaxBytes,
		Logger:         log.WithComponent("http"),
	})

	sched.Start()

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received, shutting down gracefully")
	case err := <-serverErr:
		if err != nil {
			_ = sched.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}

// Package main runs the war-record REST API server. It serves the records
// stored in sqlite and, when configured, keeps them in step with the source
// CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/We-are-incomplete/war-record-only-read/internal/analysis"
	"github.com/We-are-incomplete/war-record-only-read/internal/api"
	"github.com/We-are-incomplete/war-record-only-read/internal/config"
	"github.com/We-are-incomplete/war-record-only-read/internal/events"
	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
	"github.com/We-are-incomplete/war-record-only-read/internal/metrics"
	"github.com/We-are-incomplete/war-record-only-read/internal/players"
	"github.com/We-are-incomplete/war-record-only-read/internal/snapshot"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage"
	"github.com/We-are-incomplete/war-record-only-read/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file (default: ~/.war-record/config.toml)")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (overrides config)")
	source     = flag.String("source", "", "Record CSV to import on start (overrides config)")
	showVer    = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("apiserver", version.GetVersion())
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *source != "" {
		cfg.Source.RecordsCSV = *source
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Format, level)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	dbConfig := storage.DefaultConfig(cfg.Database.Path)
	dbConfig.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	store := storage.NewService(db)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	logger.Info("database opened", "path", cfg.Database.Path)

	m := metrics.New()
	holder := snapshot.NewHolder()
	dispatcher := events.NewDispatcher(logger)
	dispatcher.Register(events.NewLoggingObserver(logger))

	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		return err
	}
	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		PasswordHash:   cfg.Server.PasswordHash,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: timeout,
	}, api.Deps{
		Analyzer: analysis.NewService(holder, m),
		Store:    store,
		Metrics:  m,
		Logger:   logger,
	})
	dispatcher.Register(server.NewWebSocketObserver())

	reloader := snapshot.NewReloader(snapshot.ReloaderConfig{
		Store:      store,
		Holder:     holder,
		Dispatcher: dispatcher,
		Metrics:    m,
		Logger:     logger,
		Lenient:    cfg.Source.Lenient,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := initialLoad(ctx, cfg, reloader); err != nil {
		return err
	}
	importDirectory(ctx, cfg, players.NewImporter(store, dispatcher, logger), logger)

	if err := server.Start(); err != nil {
		return err
	}

	var wg conc.WaitGroup
	if cfg.Source.Watch && cfg.Source.RecordsCSV != "" {
		debounce, err := cfg.GetDebounce()
		if err != nil {
			return err
		}
		watcher := snapshot.NewWatcher(cfg.Source.RecordsCSV, debounce, reloader.WatchFunc(cfg.Source.RecordsCSV), logger)
		wg.Go(func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("source watcher stopped", "error", err)
			}
		})
	}

	backupInterval, err := cfg.GetBackupInterval()
	if err != nil {
		return err
	}
	if backupInterval > 0 {
		scheduler := storage.NewBackupScheduler(db, storage.SchedulerConfig{
			Interval: backupInterval,
			Dir:      cfg.BackupDirectory(),
			Keep:     cfg.Database.BackupKeep,
			OnBackupComplete: func(path string, err error) {
				if err != nil {
					logger.Error("scheduled backup failed", "error", err)
					return
				}
				logger.Info("scheduled backup written", "path", path)
			},
		})
		wg.Go(func() {
			if err := scheduler.Run(ctx); err != nil {
				logger.Error("backup scheduler stopped", "error", err)
			}
		})
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	wg.Wait()

	logger.Info("API server stopped")
	return nil
}

// initialLoad fills the snapshot before the server accepts requests. A
// configured source file is imported; if that fails the stored records are
// served instead, so a broken sheet never takes the service down.
func initialLoad(ctx context.Context, cfg *config.Config, reloader *snapshot.Reloader) error {
	if cfg.Source.RecordsCSV != "" {
		if _, err := reloader.ImportFile(ctx, cfg.Source.RecordsCSV); err == nil {
			return nil
		}
		logging.Default().Warn("serving stored records", "source", cfg.Source.RecordsCSV)
	}
	_, err := reloader.Refresh(ctx)
	return err
}

// importDirectory loads the configured player sheets. Failures are logged
// and the previous directory stays in the store.
func importDirectory(ctx context.Context, cfg *config.Config, importer *players.Importer, logger *logging.Logger) {
	if cfg.Source.PlayersCSV != "" {
		if _, err := importer.ImportPlayers(ctx, cfg.Source.PlayersCSV); err != nil {
			logger.Warn("player directory import failed", "source", cfg.Source.PlayersCSV, "error", err)
		}
	}
	if cfg.Source.ResultsCSV != "" {
		if _, err := importer.ImportResults(ctx, cfg.Source.ResultsCSV); err != nil {
			logger.Warn("tournament results import failed", "source", cfg.Source.ResultsCSV, "error", err)
		}
	}
}

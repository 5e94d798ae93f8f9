// Package main provides the entry point for securesnap-server.
//
// securesnap-server is the backend for SecureSnap, an ephemeral
// secret-sharing service. It stores client-encrypted payloads and
// destroys them on first read.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/swissmarley/secure-snap/internal/cache"
	"github.com/swissmarley/secure-snap/internal/core/service"
	"github.com/swissmarley/secure-snap/internal/infra/buildinfo"
	"github.com/swissmarley/secure-snap/internal/infra/confloader"
	"github.com/swissmarley/secure-snap/internal/infra/shutdown"
	"github.com/swissmarley/secure-snap/internal/infra/tlsroots"
	"github.com/swissmarley/secure-snap/internal/server/config"
	"github.com/swissmarley/secure-snap/internal/server/httpserver"
	"github.com/swissmarley/secure-snap/internal/storage"
	"github.com/swissmarley/secure-snap/internal/storage/memory"
	"github.com/swissmarley/secure-snap/internal/telemetry/logger"
	"github.com/swissmarley/secure-snap/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("securesnap-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting securesnap-server",
		"version", buildinfo.Get().Version,
		"commit", buildinfo.Get().Commit,
		"config", *configFile)

	metrics := metric.New()

	// Durable record store
	repo, closeRepo, err := initStorage(cfg, slogLogger, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Existence cache with its expiry janitor
	markers := cache.New(slogLogger,
		cache.WithJanitorInterval(cfg.Message.JanitorInterval))

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go markers.Run(janitorCtx)

	// Message lifecycle service
	messageSvc := service.NewMessageService(repo, markers, slogLogger,
		service.WithMaxExpiry(cfg.Message.MaxExpiry),
		service.WithMetrics(metrics))

	// Reconciliation sweep
	sweeper := service.NewSweeper(repo, markers, slogLogger,
		service.WithSweepInterval(cfg.Message.SweepInterval),
		service.WithSweepTimeout(cfg.Message.SweepTimeout),
		service.WithSweeperMetrics(metrics))

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.Run(sweepCtx)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		MessageService:     messageSvc,
		Logger:             slogLogger,
		Metrics:            metrics,
		CORSAllowedOrigins: cfg.Server.HTTP.CORSOrigins,
		RateLimitRPS:       cfg.Server.HTTP.RateLimitRPS,
		RateLimitBurst:     cfg.Server.HTTP.RateLimitBurst,
		RequestTimeout:     cfg.Server.HTTP.RequestTimeout,
		EnableAudit:        true,
	})

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	// Certificate watcher for TLS, reloading on rotation
	var certWatcher *tlsroots.Watcher
	if cfg.Server.HTTP.TLSCertFile != "" {
		certWatcher, err = tlsroots.NewWatcher(
			cfg.Server.HTTP.TLSCertFile,
			cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(slogLogger))
		if err != nil {
			return fmt.Errorf("init tls: %w", err)
		}
		certWatcher.StartAsync()
	}

	// Shutdown hooks run in reverse order of registration.
	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	shutdownHandler.OnShutdown(func(context.Context) error {
		log.Info("shutting down record store")
		stopJanitor()
		return closeRepo()
	})

	shutdownHandler.OnShutdown(func(context.Context) error {
		log.Info("stopping sweeper")
		stopSweeper()
		return nil
	})

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		if certWatcher != nil {
			certWatcher.Stop()
		}
		return httpServer.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", certWatcher != nil)

		var err error
		if certWatcher != nil {
			err = httpServer.ListenAndServeTLSConfig(&tls.Config{
				GetCertificate: certWatcher.GetCertificate,
				MinVersion:     tls.VersionTLS12,
			})
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	// Reload the log level on config file edits without a restart.
	if *configFile != "" {
		watchConfig(*configFile, slogLogger)
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger with redaction.
func initLogger(cfg *config.ServerConfig) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.SetDefault(log)
	return log, slog.Default(), nil
}

// initStorage creates the configured record store backend.
func initStorage(cfg *config.ServerConfig, log *slog.Logger, metrics *metric.Registry) (service.MessageRepository, func() error, error) {
	switch cfg.Storage.Backend {
	case "memory":
		store := memory.New()
		return store, store.Close, nil

	case "badger":
		badgerCfg := storage.DefaultBadgerConfig(cfg.Storage.DataDir)
		if cfg.Storage.Badger.GCInterval > 0 {
			badgerCfg.GCInterval = cfg.Storage.Badger.GCInterval
		}
		if cfg.Storage.Badger.GCThreshold > 0 {
			badgerCfg.GCThreshold = cfg.Storage.Badger.GCThreshold
		}
		if cfg.Storage.Badger.CacheSize > 0 {
			badgerCfg.CacheSize = cfg.Storage.Badger.CacheSize
		}
		if cfg.Storage.Badger.ValueLogFileSize > 0 {
			badgerCfg.ValueLogFileSize = cfg.Storage.Badger.ValueLogFileSize
		}
		badgerCfg.SyncWrites = cfg.Storage.Badger.SyncWrites

		store, err := storage.NewBadgerStore(badgerCfg, log)
		if err != nil {
			return nil, nil, err
		}
		store.RegisterMetrics(metrics.Registerer())
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// watchConfig reloads the log level when the config file changes.
func watchConfig(path string, log *slog.Logger) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		log.Warn("config watcher unavailable", "error", err)
		return
	}

	if err := watcher.Watch(path); err != nil {
		log.Warn("config watch failed", "path", path, "error", err)
		return
	}

	watcher.OnChange(func(changed string) {
		cfg, err := loadConfig(changed)
		if err != nil {
			log.Warn("config reload skipped", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level reloaded", "level", cfg.Log.Level)
	})

	watcher.StartAsync()
}

// Package main provides the entry point for revgate.
//
// revgate is the stateless token revocation gateway: it issues and
// verifies bearer credentials, records revocations in a dual-tier
// store, and answers revocation checks for the validation gate.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/revgate-io/revgate/internal/core/service"
	"github.com/revgate-io/revgate/internal/infra/buildinfo"
	"github.com/revgate-io/revgate/internal/infra/confloader"
	"github.com/revgate-io/revgate/internal/infra/shutdown"
	"github.com/revgate-io/revgate/internal/server/config"
	"github.com/revgate-io/revgate/internal/server/httpserver"
	"github.com/revgate-io/revgate/internal/server/httpserver/handler"
	"github.com/revgate-io/revgate/internal/server/localserver"
	"github.com/revgate-io/revgate/internal/storage"
	"github.com/revgate-io/revgate/internal/storage/audit"
	redisstore "github.com/revgate-io/revgate/internal/storage/redis"
	"github.com/revgate-io/revgate/internal/telemetry/logger"
	"github.com/revgate-io/revgate/internal/telemetry/metric"
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
		fmt.Printf("revgate %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogLogger := logger.Slog(log)

	log.Info("starting revgate",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	// Re-apply the log level when the config file changes. Other
	// settings need a restart.
	var watcher *confloader.Watcher
	if *configFile != "" {
		watcher, err = confloader.NewWatcher(confloader.WithWatcherLogger(slogLogger))
		if err != nil {
			return fmt.Errorf("init config watcher: %w", err)
		}
		if err := watcher.Watch(*configFile); err != nil {
			return fmt.Errorf("watch config file: %w", err)
		}
		watcher.OnChange(func(string) {
			updated, err := loadConfig(*configFile)
			if err != nil {
				log.Warn("config reload failed, keeping current settings", "error", err)
				return
			}
			if updated.Log.Level != logger.GetLevel() {
				logger.SetLevel(updated.Log.Level)
				log.Info("log level changed", "level", updated.Log.Level)
			}
		})
		watcher.StartAsync()
	}

	metrics := metric.New()

	// Shared tier (Redis) and the tiered store over it
	sharedTier := redisstore.New(redisstore.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		Logger:       slogLogger,
	})

	store, err := storage.NewTiered(sharedTier, storage.TieredConfig{
		LocalJanitorInterval: cfg.Cache.JanitorInterval,
		Logger:               slogLogger,
	})
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	// Store gauges are collected at scrape time
	metrics.Registry().MustRegister(metric.NewStoreCollector(store))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(ctx); err != nil {
		log.Warn("shared tier unreachable at startup, continuing degraded", "error", err)
	}
	cancel()

	// Audit archive, optional
	var archive *audit.Archive
	if cfg.Audit.Enabled {
		archive, err = openArchive(cfg)
		if err != nil {
			return fmt.Errorf("open audit archive: %w", err)
		}
	}

	// Services
	issuer, err := service.NewIssuer([]byte(cfg.Auth.Secret), cfg.Auth.Issuer, metrics)
	if err != nil {
		return fmt.Errorf("init issuer: %w", err)
	}

	var archiver service.Archiver
	if archive != nil {
		archiver = archive
	}
	publisher := service.NewLogPublisher(log)
	revokeSvc := service.NewRevocationService(store, archiver, publisher, metrics, log)
	checkSvc := service.NewCheckService(store, metrics,
		service.WithResultCache(cfg.Cache.ResultCacheSize, cfg.Cache.ResultCacheTTL))
	statsSvc := service.NewStatsService(store, cfg.Cache.StatsCacheTTL)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Issuer:            issuer,
		RevocationService: revokeSvc,
		CheckService:      checkSvc,
		StatsService:      statsSvc,
		Pinger:            store,
		Metrics:           metrics,
		Logger:            slogLogger,
		GlobalRateLimit:   httpserver.DefaultRouterConfig().GlobalRateLimit,
		EnableAudit:       true,
	})

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router,
		cfg.Server.HTTP.ReadTimeout, cfg.Server.HTTP.WriteTimeout)

	// Local admin socket, ungated; file permissions are the access
	// control
	var localServer *localserver.Server
	if cfg.Server.LocalSocket != "" {
		localHandler := handler.New(issuer, revokeSvc, checkSvc, statsSvc, store, slogLogger)
		localServer = localserver.New(cfg.Server.LocalSocket, localHandler)
	}

	// Graceful shutdown, hooks run in reverse registration order
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout)

	if watcher != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			return watcher.Stop()
		})
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("closing revocation store")
		return store.Close()
	})
	if archive != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("closing audit archive")
			return archive.Close()
		})
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})
	if localServer != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down local socket")
			return localServer.Shutdown(ctx)
		})
	}

	if localServer != nil {
		go func() {
			log.Info("local socket listening", "path", localServer.Path())
			if err := localServer.ListenAndServe(); err != nil {
				log.Error("local socket error", "error", err)
			}
		}()
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)

		var err error
		if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

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

// openArchive opens the encrypted audit archive. The Argon2 salt is
// persisted next to the database so the key derives identically
// across restarts.
func openArchive(cfg *config.ServerConfig) (*audit.Archive, error) {
	archiveCfg := audit.DefaultConfig(cfg.Audit.Dir)
	archiveCfg.Logger = logger.Slog(logger.Default())

	if cfg.Audit.Passphrase != "" {
		if err := os.MkdirAll(cfg.Audit.Dir, 0700); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
		saltPath := filepath.Join(cfg.Audit.Dir, "archive.salt")

		var salt []byte
		if data, err := os.ReadFile(saltPath); err == nil {
			salt = data
		}

		sealer, salt, err := audit.NewSealerFromPassphrase([]byte(cfg.Audit.Passphrase), salt)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(saltPath, salt, 0600); err != nil {
			return nil, fmt.Errorf("persist salt: %w", err)
		}
		archiveCfg.Sealer = sealer
	}

	return audit.Open(archiveCfg)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tw5keep/internal/core/service"
	"github.com/yndnr/tw5keep/internal/infra/buildinfo"
	"github.com/yndnr/tw5keep/internal/infra/confloader"
	"github.com/yndnr/tw5keep/internal/infra/shutdown"
	"github.com/yndnr/tw5keep/internal/server/config"
	"github.com/yndnr/tw5keep/internal/server/httpserver"
	"github.com/yndnr/tw5keep/internal/storage/wikistore"
	"github.com/yndnr/tw5keep/internal/telemetry/logger"
	"github.com/yndnr/tw5keep/internal/telemetry/metric"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "tw5keep-server",
		Usage:   "Serve and version a TiddlyWiki document",
		Version: buildinfo.String(),
		Flags:   serverFlags(),
		Action:  run,
	}
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	overrides := flagOverrides(c)

	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting tw5keep-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile,
	)

	ctx := c.Context
	store, err := initStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	metrics := metric.NewRegistry()
	wiki := service.NewWikiService(store, &service.WikiServiceConfig{
		Logger:           log.With("component", "wiki").Slog(),
		SerializeUpdates: cfg.Wiki.SerializeUpdates,
		Observer:         metrics,
	})

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Wiki:      wiki,
		Logger:    slogLogger,
		Metrics:   metrics,
		RateLimit: cfg.Server.HTTP.RateLimit,
	})

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("bind %s: %w", cfg.ListenAddr(), err)
	}

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)
	serveErr := make(chan error, 2)

	httpServer := httpserver.New(ln.Addr().String(), router)
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down", "addr", httpServer.Addr())
		return httpServer.Shutdown(ctx)
	})
	go serve(httpServer, ln, shutdownHandler, serveErr, slogLogger)

	if cfg.Metrics.Addr != "" {
		metricsLn, err := net.Listen("tcp", cfg.Metrics.Addr)
		if err != nil {
			_ = httpServer.Shutdown(ctx)
			return fmt.Errorf("bind metrics %s: %w", cfg.Metrics.Addr, err)
		}
		metricsServer := httpserver.New(metricsLn.Addr().String(), metrics.Handler())
		shutdownHandler.OnShutdown(metricsServer.Shutdown)
		go serve(metricsServer, metricsLn, shutdownHandler, serveErr, slogLogger)
		log.Info("metrics listening", "addr", metricsLn.Addr().String())
	}

	if configFile != "" {
		watcher, err := watchLogLevel(configFile, overrides, log.With("component", "confloader").Slog())
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("started server", "addr", ln.Addr().String())

	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	select {
	case err := <-serveErr:
		return err
	default:
	}

	log.Info("server stopped gracefully")
	return nil
}

// serve runs srv until it is shut down. A listener failure starts
// shutdown of the whole process.
func serve(srv *httpserver.Server, ln net.Listener, sh *shutdown.Handler, errCh chan<- error, log *slog.Logger) {
	if err := srv.Serve(ln); err != nil {
		log.Error("HTTP server error", "addr", srv.Addr(), "error", err)
		errCh <- fmt.Errorf("serve %s: %w", srv.Addr(), err)
		sh.Trigger()
	}
}

// loadConfig layers defaults, the optional file, TW5KEEP_ environment
// variables and explicit flags, then verifies the result.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// initStore prepares the backup directory and takes the startup backup.
// Both steps are fatal: a document that cannot be backed up is not served.
func initStore(ctx context.Context, cfg *config.ServerConfig, log logger.Logger) (*wikistore.Store, error) {
	store, err := wikistore.New(wikistore.Config{
		WikiFile:  cfg.Wiki.File,
		BackupDir: cfg.Wiki.BackupDir,
	})
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	if err := store.EnsureBackupDir(); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	snap, err := store.SnapshotDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("startup backup: %w", err)
	}
	log.Info("saved to backup file",
		"backup_dir", store.BackupDir(),
		"file", snap.Name,
		"size", snap.Size,
		"fingerprint", snap.Fingerprint,
	)

	return store, nil
}

// watchLogLevel re-applies log.level whenever the config file changes.
// Other settings are fixed for the life of the process.
func watchLogLevel(configFile string, overrides map[string]any, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}

	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		reloadLogLevel(configFile, overrides, log)
	})
	watcher.StartAsync()

	return watcher, nil
}

func reloadLogLevel(configFile string, overrides map[string]any, log *slog.Logger) {
	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		log.Warn("ignoring config change", "error", err)
		return
	}

	if cfg.Log.Level == logger.GetLevel() {
		return
	}
	logger.SetLevel(cfg.Log.Level)
	log.Info("log level changed", "level", logger.GetLevel())
}

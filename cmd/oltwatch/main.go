package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/internal/collector"
	"github.com/HerbHall/oltwatch/internal/config"
	"github.com/HerbHall/oltwatch/internal/inventory"
	"github.com/HerbHall/oltwatch/internal/module"
	"github.com/HerbHall/oltwatch/internal/notify"
	"github.com/HerbHall/oltwatch/internal/oltsync"
	"github.com/HerbHall/oltwatch/internal/probe"
	"github.com/HerbHall/oltwatch/internal/server"
	"github.com/HerbHall/oltwatch/internal/services"
	"github.com/HerbHall/oltwatch/internal/store"
	"github.com/HerbHall/oltwatch/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("OLTWatch server starting", zap.String("version", version.Short()))

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Open database and apply schema
	db, err := store.Open(cfg.GetString("database.path"))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(context.Background(), "oltsync", oltsync.Migrations()); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// Repositories
	devices := services.NewSQLiteDeviceRepository(db.DB())
	settings := services.NewTelegramSettingsRepository(db.DB())
	routers := services.NewUplinkRouterRepository(db.DB())

	// Notifier reads its configuration from the database on every send, so
	// settings changes apply without a restart.
	notifier := notify.NewTelegram(settings, logger.Named("notify"))

	// Collectors
	collectorTimeout := cfg.GetDuration("modules.oltsync.collector_timeout")
	collectors := collector.DefaultRegistry(collectorTimeout, logger.Named("collector"))

	// Surface brand misconfiguration before the first scheduled sync.
	if active, err := devices.ListActive(context.Background()); err == nil {
		if err := collectors.CheckDevices(active); err != nil {
			logger.Warn("device brand check failed", zap.Error(err))
		}
	}

	engine := oltsync.NewEngine(db, devices, collectors, notifier, collectorTimeout, logger.Named("oltsync"))

	// Module registry
	registry := module.NewRegistry(logger)
	modules := []module.Module{
		oltsync.NewModule(engine),
		probe.NewModule(devices, routers),
		inventory.NewModule(devices, settings, notifier),
	}
	for _, m := range modules {
		if err := registry.Register(m); err != nil {
			logger.Fatal("failed to register module", zap.Error(err))
		}
	}

	if err := registry.InitAll(cfg); err != nil {
		logger.Fatal("failed to initialize modules", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := registry.StartAll(ctx); err != nil {
		logger.Fatal("failed to start modules", zap.Error(err))
	}

	// HTTP server
	addr := cfg.GetString("server.host") + ":" + cfg.GetString("server.port")
	if addr == ":" {
		addr = "0.0.0.0:8080"
	}
	srv := server.New(addr, registry, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("OLTWatch server ready", zap.String("addr", addr))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	registry.StopAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("OLTWatch server stopped")
}

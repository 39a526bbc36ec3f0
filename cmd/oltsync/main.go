// Command oltsync runs one reconciliation pass over the fleet (or a single
// device) and exits. Intended for cron jobs and manual troubleshooting.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/internal/collector"
	"github.com/HerbHall/oltwatch/internal/config"
	"github.com/HerbHall/oltwatch/internal/notify"
	"github.com/HerbHall/oltwatch/internal/oltsync"
	"github.com/HerbHall/oltwatch/internal/services"
	"github.com/HerbHall/oltwatch/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	deviceID := flag.String("device", "", "sync only this device ID")
	concurrency := flag.Int("concurrency", 4, "devices synced in parallel")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	noNotify := flag.Bool("no-notify", false, "suppress alert notifications for this run")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := store.Open(cfg.GetString("database.path"))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.Migrate(ctx, "oltsync", oltsync.Migrations()); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	devices := services.NewSQLiteDeviceRepository(db.DB())
	settings := services.NewTelegramSettingsRepository(db.DB())

	var notifier notify.Notifier = notify.NewTelegram(settings, logger.Named("notify"))
	if *noNotify {
		notifier = notify.Nop{}
	}

	collectorTimeout := cfg.GetDuration("modules.oltsync.collector_timeout")
	collectors := collector.DefaultRegistry(collectorTimeout, logger.Named("collector"))
	engine := oltsync.NewEngine(db, devices, collectors, notifier, collectorTimeout, logger.Named("oltsync"))

	if *deviceID != "" {
		device, err := devices.Get(ctx, *deviceID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "device %s: %v\n", *deviceID, err)
			os.Exit(1)
		}
		result, err := engine.Sync(ctx, device)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sync %s: %v\n", device.Name, err)
			os.Exit(1)
		}
		fmt.Printf("%s: %s\n", device.Name, result.Summary())
		return
	}

	report, err := engine.SyncAll(ctx, *concurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fleet sync failed: %v\n", err)
		os.Exit(1)
	}

	for _, out := range report.Devices {
		if !out.OK {
			fmt.Printf("%s: FAILED: %s\n", out.Name, out.Message)
			continue
		}
		fmt.Printf("%s: %s\n", out.Name, out.Message)
	}
	fmt.Printf("synced %d devices in %s (%d ok, %d failed)\n",
		len(report.Devices), report.Duration.Round(time.Millisecond),
		report.Succeeded, report.Failed)

	if report.Failed > 0 {
		os.Exit(1)
	}
}

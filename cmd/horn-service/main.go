// Package main implements the horn service. It answers activate and
// deactivate requests and plays the requested pattern on the bus as horn
// target values.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/app"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/bus"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/hornservice"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/rpc"
)

// Build information
const (
	Version = "0.1.0"
	appName = "horn-service"

	// Used unless metrics.port is set.
	defaultMetricsPort = 9090
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string) error {
	cliCfg, err := parseFlags(args)
	if err != nil {
		return err
	}
	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}

	logger := app.SetupLogger(appName, Version, cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := app.LoadConfig(cliCfg.ConfigPath, cliCfg.ExplicitConfig(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(appName, cfg, logger, app.WithDefaultMetricsPort(defaultMetricsPort))
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.Start(ctx); err != nil {
		return err
	}

	svc := hornservice.New(bus.NewNATS(rt.NATS, logger),
		hornservice.WithTopic(cfg.Bridge.Topic),
		hornservice.WithIdentity(cfg.Identity()),
		hornservice.WithLogger(logger),
		hornservice.WithMetrics(rt.Metrics()),
	)

	server := rpc.NewServer(rt.NATS, logger,
		rpc.WithRateLimit(cfg.Service.RateLimit, cfg.Service.RateBurst),
	)
	serve := func(ctx context.Context) error { return svc.Run(ctx, server) }
	if err := rt.Run(ctx, serve); err != nil {
		return fmt.Errorf("horn service stopped: %w", err)
	}
	logger.Info("Horn service stopped")
	return nil
}

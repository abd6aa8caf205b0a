// Package main implements the software horn: it listens for target horn
// states on the bus, applies them and reports the current state back.
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
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/bridge"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/bus"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/health"
)

// Build information
const (
	Version = "0.1.0"
	appName = "software-horn"

	// Used unless metrics.port is set.
	defaultMetricsPort = 9091
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

	// Bells go to stderr, logs to stdout.
	horn := bridge.NewSoundActuator(os.Stderr, cliCfg.Sound)
	rt.Health.Register("actuator", func() health.Status {
		if horn.Active() {
			return health.NewHealthy("actuator", "horn active")
		}
		return health.NewHealthy("actuator", "horn idle")
	})

	br := bridge.New(bus.NewNATS(rt.NATS, logger),
		bridge.WithTopic(cfg.Bridge.Topic),
		bridge.WithActuator(horn),
		bridge.WithMalformedPolicy(cfg.MalformedPolicy()),
		bridge.WithLogger(logger),
		bridge.WithMetrics(rt.Metrics()),
	)

	logger.Info("Starting the software horn", "sound", cliCfg.Sound, "topic", cfg.Bridge.Topic)
	if err := rt.Run(ctx, br.Run); err != nil {
		return fmt.Errorf("software horn stopped: %w", err)
	}
	logger.Info("Software horn stopped")
	return nil
}

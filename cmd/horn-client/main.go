// Package main implements the horn client, which drives the horn service
// over NATS request/reply.
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
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/horn"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/rpc"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/uri"
)

// Build information
const (
	Version = "0.1.0"
	appName = "horn-client"
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

	rt, err := app.NewRuntime(appName, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.Start(ctx); err != nil {
		return err
	}

	provider, err := uri.NewStaticProvider(cfg.Identity())
	if err != nil {
		return fmt.Errorf("create uri provider: %w", err)
	}
	rpcClient := rpc.NewNATSClient(rt.NATS, provider.SourceURI(), logger)
	client := horn.NewClient(rpcClient, provider,
		horn.WithLogger(logger),
		horn.WithMetrics(rt.Metrics()),
	)

	logger.Info("Starting the client for the horn service", "action", cliCfg.Action)
	if err := execute(ctx, logger, client, cliCfg.Action); err != nil {
		if ctx.Err() != nil {
			logger.Info("Horn client stopped")
			return nil
		}
		return err
	}
	return nil
}

func execute(ctx context.Context, logger *slog.Logger, client *horn.Client, action string) error {
	switch action {
	case actionLoop:
		return horn.RunExampleLoop(ctx, logger, client, horn.Sleep)
	case actionDeactivate:
		return client.Deactivate(ctx)
	default:
		tag, err := horn.ParsePrebuiltRequest(action)
		if err != nil {
			return err
		}
		return client.ActivatePrebuilt(ctx, tag)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/app"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/horn"
)

const (
	actionLoop       = "loop"
	actionDeactivate = "deactivate"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	app.Flags
	Action string
}

func parseFlags(args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	cfg.Register(fs)
	fs.StringVarP(&cfg.Action, "action", "a", app.GetEnv("HORN_CLIENT_ACTION", actionLoop),
		"What to do: loop, sequenced, continuous, deactivate (env: HORN_CLIENT_ACTION)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Runs the example horn sequence against the horn service.")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Resolve(fs)

	if err := validateFlags(cfg); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch cfg.Action {
	case actionLoop, actionDeactivate:
		return nil
	}
	if _, err := horn.ParsePrebuiltRequest(cfg.Action); err != nil {
		return fmt.Errorf("unknown action %q", cfg.Action)
	}
	return nil
}

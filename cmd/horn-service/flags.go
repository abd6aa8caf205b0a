package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/app"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	app.Flags
}

func parseFlags(args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	cfg.Register(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Serves the horn activate and deactivate methods.")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Resolve(fs)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

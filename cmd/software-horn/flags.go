package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/app"
)

// EnvSound toggles the audible horn.
const EnvSound = "IS_SOUND_ENABLED"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	app.Flags
	Sound bool
}

func parseFlags(args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	cfg.Register(fs)
	fs.BoolVarP(&cfg.Sound, "sound", "s", app.GetEnvBool(EnvSound, true),
		"Ring the terminal bell when the horn activates (env: "+EnvSound+")")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Applies horn target values from the bus and reports the current value.")
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

package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/config"
)

// Environment variables read by the common flags.
const (
	EnvConfig    = "NATS_CONFIG"
	EnvLogLevel  = "HORN_LOG_LEVEL"
	EnvLogFormat = "HORN_LOG_FORMAT"
)

// Flags holds the command-line settings every binary accepts.
type Flags struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	ShowVersion bool

	configSet bool
}

// Register binds the common flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.ConfigPath, "config", "c",
		GetEnv(EnvConfig, config.DefaultPath),
		"Path to the NATS configuration file (env: "+EnvConfig+")")
	fs.StringVar(&f.LogLevel, "log-level",
		GetEnv(EnvLogLevel, "info"),
		"Log level: debug, info, warn, error (env: "+EnvLogLevel+")")
	fs.StringVar(&f.LogFormat, "log-format",
		GetEnv(EnvLogFormat, "text"),
		"Log format: json, text (env: "+EnvLogFormat+")")
	fs.BoolVarP(&f.ShowVersion, "version", "V", false, "Show version information")
}

// Resolve records whether the config path was chosen explicitly. Call it
// after fs.Parse.
func (f *Flags) Resolve(fs *pflag.FlagSet) {
	_, fromEnv := os.LookupEnv(EnvConfig)
	f.configSet = fs.Changed("config") || fromEnv
}

// ExplicitConfig reports whether the config path came from a flag or the
// environment rather than the built-in default.
func (f *Flags) ExplicitConfig() bool {
	return f.configSet
}

// Validate checks the common flags.
func (f *Flags) Validate() error {
	switch strings.ToLower(f.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", f.LogLevel)
	}
	switch strings.ToLower(f.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", f.LogFormat)
	}
	if f.ConfigPath == "" {
		return fmt.Errorf("config path is required")
	}
	return nil
}

// GetEnv returns the value of key or defaultValue when unset.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvBool parses key as a boolean, falling back to defaultValue.
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

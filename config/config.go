package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/bridge"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/bus"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/horn"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/natsclient"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/uri"
)

// DefaultPath is where the processes look for their configuration file.
const DefaultPath = "/nats-config.jsonc"

// Config represents the complete process configuration
type Config struct {
	NATS    NATSConfig    `json:"nats"`
	Service ServiceConfig `json:"service"`
	Bridge  BridgeConfig  `json:"bridge"`
	Metrics MetricsConfig `json:"metrics"`
}

// NATSConfig defines NATS connection settings
type NATSConfig struct {
	URLs          []string      `json:"urls,omitempty"`
	Name          string        `json:"name,omitempty"`
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait Duration      `json:"reconnect_wait,omitempty"`
	Timeout       Duration      `json:"timeout,omitempty"`
	DrainTimeout  Duration      `json:"drain_timeout,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
	TLS           NATSTLSConfig `json:"tls,omitempty"`
}

// NATSTLSConfig for secure NATS connections
type NATSTLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file,omitempty"`
	KeyFile  string `json:"key_file,omitempty"`
	CAFile   string `json:"ca_file,omitempty"`
}

// ServiceConfig is the identity of the horn service, used by the client to
// address it and by the service to serve it.
type ServiceConfig struct {
	Authority    string `json:"authority"`
	EntityID     uint32 `json:"entity_id"`
	MajorVersion uint8  `json:"major_version"`

	// RateLimit caps requests per second served by horn-service; 0 disables.
	RateLimit float64 `json:"rate_limit,omitempty"`
	RateBurst int     `json:"rate_burst,omitempty"`
}

// BridgeConfig configures the horn topic and the bridge's handling of it
type BridgeConfig struct {
	Topic           string `json:"topic"`
	MalformedPolicy string `json:"malformed_policy,omitempty"`
}

// MetricsConfig configures the metrics HTTP server. Port 0 leaves the choice
// to the process; a negative port disables the server.
type MetricsConfig struct {
	Port int    `json:"port"`
	Path string `json:"path,omitempty"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		NATS: NATSConfig{
			URLs:          []string{"nats://localhost:4222"},
			MaxReconnects: -1,
			ReconnectWait: Duration(2 * time.Second),
			Timeout:       Duration(5 * time.Second),
			DrainTimeout:  Duration(5 * time.Second),
		},
		Service: ServiceConfig{
			Authority:    horn.ServiceAuthority,
			EntityID:     horn.ServiceEntityID,
			MajorVersion: horn.ServiceMajorVersion,
			RateLimit:    100,
			RateBurst:    10,
		},
		Bridge: BridgeConfig{
			Topic:           bus.HornTopic,
			MalformedPolicy: bridge.Discard.String(),
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if len(c.NATS.URLs) == 0 {
		return invalid("nats.urls is required")
	}
	for _, raw := range c.NATS.URLs {
		if err := validateNATSURL(raw); err != nil {
			return err
		}
	}
	if c.NATS.TLS.Enabled && (c.NATS.TLS.CertFile == "") != (c.NATS.TLS.KeyFile == "") {
		return invalid("nats.tls.cert_file and nats.tls.key_file must be set together")
	}
	if (c.NATS.Username == "") != (c.NATS.Password == "") {
		return invalid("nats.username and nats.password must be set together")
	}

	if err := c.Identity().Validate(); err != nil {
		return errors.Wrap(err, "Config", "Validate", "validate service identity")
	}
	if c.Service.RateLimit < 0 || c.Service.RateBurst < 0 {
		return invalid("service.rate_limit and service.rate_burst must not be negative")
	}

	if strings.TrimSpace(c.Bridge.Topic) == "" {
		return invalid("bridge.topic is required")
	}
	if _, err := bridge.ParseMalformedPolicy(c.Bridge.MalformedPolicy); err != nil {
		return err
	}

	if c.Metrics.Port < -1 || c.Metrics.Port > 65535 {
		return invalid(fmt.Sprintf("metrics.port %d out of range", c.Metrics.Port))
	}
	if c.Metrics.Path != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid(fmt.Sprintf("metrics.path %q must start with /", c.Metrics.Path))
	}

	return nil
}

func invalid(msg string) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, msg), "Config", "Validate", "validate config")
}

func validateNATSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return invalid(fmt.Sprintf("nats url %q: %v", raw, err))
	}
	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return invalid(fmt.Sprintf("nats url %q: unsupported scheme %q", raw, u.Scheme))
	}
	if u.Host == "" {
		return invalid(fmt.Sprintf("nats url %q: missing host", raw))
	}
	return nil
}

// Identity returns the configured horn service identity.
func (c *Config) Identity() uri.Identity {
	return uri.Identity{
		AuthorityName: c.Service.Authority,
		EntityID:      c.Service.EntityID,
		MajorVersion:  c.Service.MajorVersion,
	}
}

// MalformedPolicy returns the parsed bridge policy. Call Validate first.
func (c *Config) MalformedPolicy() bridge.MalformedPolicy {
	p, _ := bridge.ParseMalformedPolicy(c.Bridge.MalformedPolicy)
	return p
}

// ServerURLs joins the URLs in the form nats.Connect expects.
func (c *Config) ServerURLs() string {
	return strings.Join(c.NATS.URLs, ",")
}

// ClientOptions translates the NATS settings into natsclient options.
func (c *Config) ClientOptions() []natsclient.ClientOption {
	opts := []natsclient.ClientOption{
		natsclient.WithMaxReconnects(c.NATS.MaxReconnects),
	}
	if c.NATS.ReconnectWait > 0 {
		opts = append(opts, natsclient.WithReconnectWait(c.NATS.ReconnectWait.Duration()))
	}
	if c.NATS.Timeout > 0 {
		opts = append(opts, natsclient.WithTimeout(c.NATS.Timeout.Duration()))
	}
	if c.NATS.DrainTimeout > 0 {
		opts = append(opts, natsclient.WithDrainTimeout(c.NATS.DrainTimeout.Duration()))
	}
	if c.NATS.Name != "" {
		opts = append(opts, natsclient.WithName(c.NATS.Name))
	}
	if c.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(c.NATS.Username, c.NATS.Password))
	}
	if c.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(c.NATS.Token))
	}
	if c.NATS.TLS.Enabled {
		opts = append(opts, natsclient.WithTLS(c.NATS.TLS.CertFile, c.NATS.TLS.KeyFile, c.NATS.TLS.CAFile))
	}
	return opts
}

// String returns a JSON representation of the config with secrets masked
func (c *Config) String() string {
	masked := *c
	if masked.NATS.Password != "" {
		masked.NATS.Password = "****"
	}
	if masked.NATS.Token != "" {
		masked.NATS.Token = "****"
	}
	data, err := json.Marshal(masked)
	if err != nil {
		return fmt.Sprintf("config(error: %v)", err)
	}
	return string(data)
}

// Duration is a time.Duration written as a Go duration string ("2s", "500ms").
// Plain numbers are read as milliseconds.
type Duration time.Duration

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(val) * time.Millisecond)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

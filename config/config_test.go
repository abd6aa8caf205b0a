package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/bridge"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"nats://localhost:4222"}, cfg.NATS.URLs)
	assert.Equal(t, "Vehicle/Body/Horn/IsActive", cfg.Bridge.Topic)
	assert.Equal(t, bridge.Discard, cfg.MalformedPolicy())
	assert.Equal(t, "horn-service-kuksa", cfg.Identity().AuthorityName)
	assert.Equal(t, uint32(0x1C), cfg.Identity().EntityID)
	assert.Equal(t, uint8(1), cfg.Identity().MajorVersion)
	assert.Equal(t, 0, cfg.Metrics.Port, "each process picks its own metrics port")
	assert.Equal(t, 5*time.Second, cfg.NATS.DrainTimeout.Duration())
}

func TestLoad_JSONC(t *testing.T) {
	path := writeFile(t, "nats-config.jsonc", `{
		// broker of the test bench
		"nats": {
			"urls": ["nats://bench:4222", "nats://bench:4223"],
			"reconnect_wait": "500ms",
			"timeout": 1500,
			"drain_timeout": "750ms",
		},
		/* coerce like the legacy horn */
		"bridge": {"malformed_policy": "coerce-false"},
		"metrics": {"port": 0},
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"nats://bench:4222", "nats://bench:4223"}, cfg.NATS.URLs)
	assert.Equal(t, "nats://bench:4222,nats://bench:4223", cfg.ServerURLs())
	assert.Equal(t, 500*time.Millisecond, cfg.NATS.ReconnectWait.Duration())
	assert.Equal(t, 1500*time.Millisecond, cfg.NATS.Timeout.Duration())
	assert.Equal(t, 750*time.Millisecond, cfg.NATS.DrainTimeout.Duration())
	assert.Equal(t, bridge.CoerceFalse, cfg.MalformedPolicy())
	assert.Equal(t, 0, cfg.Metrics.Port)

	// Untouched keys keep their defaults.
	assert.Equal(t, -1, cfg.NATS.MaxReconnects)
	assert.Equal(t, "Vehicle/Body/Horn/IsActive", cfg.Bridge.Topic)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "horn-service-kuksa", cfg.Service.Authority)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "horn.yaml", `
nats:
  urls:
    - nats://yaml-host:4222
  name: software-horn
service:
  authority: horn-service-test
  entity_id: 29
  major_version: 2
metrics:
  port: 9191
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"nats://yaml-host:4222"}, cfg.NATS.URLs)
	assert.Equal(t, "software-horn", cfg.NATS.Name)
	assert.Equal(t, "horn-service-test", cfg.Identity().AuthorityName)
	assert.Equal(t, uint32(29), cfg.Identity().EntityID)
	assert.Equal(t, uint8(2), cfg.Identity().MajorVersion)
	assert.Equal(t, 9191, cfg.Metrics.Port)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait.Duration())
}

func TestLoader_Layers(t *testing.T) {
	base := writeFile(t, "base.json", `{"nats": {"urls": ["nats://base:4222"], "name": "base"}}`)
	override := writeFile(t, "override.yml", "nats:\n  name: override\n")

	l := NewLoader()
	l.EnableValidation(true)
	l.AddLayer(base)
	l.AddLayer(override)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"nats://base:4222"}, cfg.NATS.URLs)
	assert.Equal(t, "override", cfg.NATS.Name)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HORN_NATS_URLS", "nats://a:4222, nats://b:4222")
	t.Setenv("HORN_NATS_TOKEN", "s3cret")
	t.Setenv("HORN_BRIDGE_MALFORMED_POLICY", "coerce-false")
	t.Setenv("HORN_METRICS_PORT", "0")

	cfg, err := Load(writeFile(t, "c.jsonc", `{}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"nats://a:4222", "nats://b:4222"}, cfg.NATS.URLs)
	assert.Equal(t, "s3cret", cfg.NATS.Token)
	assert.Equal(t, bridge.CoerceFalse, cfg.MalformedPolicy())
	assert.Equal(t, 0, cfg.Metrics.Port)
	assert.NotContains(t, cfg.String(), "s3cret")
}

func TestLoad_EnvOverrideInvalidPort(t *testing.T) {
	t.Setenv("HORN_METRICS_PORT", "ninety")

	_, err := Load(writeFile(t, "c.json", `{}`))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.jsonc"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrConfigNotFound)
		assert.True(t, errors.IsFatal(err))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "config.toml", `x = 1`))
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.json", `{"nats": `))
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "nats: [unclosed"))
		assert.ErrorIs(t, err, errors.ErrParsingFailed)
	})

	t.Run("too deep", func(t *testing.T) {
		deep := strings.Repeat("[", maxJSONDepth+1) + strings.Repeat("]", maxJSONDepth+1)
		_, err := Load(writeFile(t, "deep.json", `{"x": `+deep+`}`))
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})

	t.Run("fails validation", func(t *testing.T) {
		_, err := Load(writeFile(t, "v.json", `{"bridge": {"topic": ""}}`))
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})

	t.Run("directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "dir.json")
		require.NoError(t, os.Mkdir(dir, 0o700))
		_, err := Load(dir)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no urls", func(c *Config) { c.NATS.URLs = nil }},
		{"bad scheme", func(c *Config) { c.NATS.URLs = []string{"http://localhost:4222"} }},
		{"no host", func(c *Config) { c.NATS.URLs = []string{"nats://"} }},
		{"user without password", func(c *Config) { c.NATS.Username = "horn" }},
		{"cert without key", func(c *Config) {
			c.NATS.TLS = NATSTLSConfig{Enabled: true, CertFile: "cert.pem"}
		}},
		{"empty authority", func(c *Config) { c.Service.Authority = "" }},
		{"authority with dots", func(c *Config) { c.Service.Authority = "horn.service" }},
		{"zero version", func(c *Config) { c.Service.MajorVersion = 0 }},
		{"negative rate limit", func(c *Config) { c.Service.RateLimit = -1 }},
		{"unknown policy", func(c *Config) { c.Bridge.MalformedPolicy = "ignore" }},
		{"port range", func(c *Config) { c.Metrics.Port = 70000 }},
		{"port below disabled", func(c *Config) { c.Metrics.Port = -2 }},
		{"relative path", func(c *Config) { c.Metrics.Path = "metrics" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err), "got %v", err)
		})
	}
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.ClientOptions(), 4)

	cfg.NATS.DrainTimeout = 0
	assert.Len(t, cfg.ClientOptions(), 3)
	cfg.NATS.DrainTimeout = Duration(time.Second)

	cfg.NATS.Name = "horn-client"
	cfg.NATS.Username = "horn"
	cfg.NATS.Password = "pw"
	cfg.NATS.Token = "tok"
	cfg.NATS.TLS = NATSTLSConfig{Enabled: true, CAFile: "ca.pem"}
	assert.Len(t, cfg.ClientOptions(), 8)
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, d.UnmarshalJSON([]byte(`250`)))
	assert.Equal(t, 250*time.Millisecond, d.Duration())

	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))

	out, err := Duration(2 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
}

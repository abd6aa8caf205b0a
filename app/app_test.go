package app

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/config"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/health"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/testutil"
)

func TestLoadConfig_MissingDefaultFallsBack(t *testing.T) {
	rec := testutil.NewLogRecorder()
	path := filepath.Join(t.TempDir(), "nats-config.jsonc")

	cfg, err := LoadConfig(path, false, rec.Logger())
	require.NoError(t, err)
	assert.Equal(t, config.Default().NATS.URLs, cfg.NATS.URLs)
	assert.True(t, rec.Has(slog.LevelWarn, "No configuration file found"))
}

func TestLoadConfig_MissingExplicitFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nats-config.jsonc")

	_, err := LoadConfig(path, true, testutil.NewLogRecorder().Logger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigNotFound))
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nats-config.jsonc")
	body := `{
		// comment
		"nats": {"urls": ["nats://broker:4222"]},
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path, true, testutil.NewLogRecorder().Logger())
	require.NoError(t, err)
	assert.Equal(t, []string{"nats://broker:4222"}, cfg.NATS.URLs)
}

func TestFlags_Defaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	os.Unsetenv(EnvConfig)

	var f Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)
	require.NoError(t, fs.Parse(nil))
	f.Resolve(fs)

	assert.Equal(t, config.DefaultPath, f.ConfigPath)
	assert.Equal(t, "info", f.LogLevel)
	assert.False(t, f.ExplicitConfig())
	assert.NoError(t, f.Validate())
}

func TestFlags_ShortConfigFlag(t *testing.T) {
	var f Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)
	require.NoError(t, fs.Parse([]string{"-c", "/tmp/custom.jsonc", "--log-level", "debug"}))
	f.Resolve(fs)

	assert.Equal(t, "/tmp/custom.jsonc", f.ConfigPath)
	assert.Equal(t, "debug", f.LogLevel)
	assert.True(t, f.ExplicitConfig())
}

func TestFlags_Validate(t *testing.T) {
	f := Flags{ConfigPath: "x", LogLevel: "loud", LogFormat: "text"}
	assert.Error(t, f.Validate())

	f = Flags{ConfigPath: "x", LogLevel: "info", LogFormat: "xml"}
	assert.Error(t, f.Validate())
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("HORN_TEST_BOOL", "false")
	assert.False(t, GetEnvBool("HORN_TEST_BOOL", true))

	t.Setenv("HORN_TEST_BOOL", "nonsense")
	assert.True(t, GetEnvBool("HORN_TEST_BOOL", true))
}

func TestNewLogger_JSONAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "software-horn", "1.2.3", "info", "json")
	logger.Debug("hidden")
	logger.Info("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "software-horn", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
}

func TestNewRuntime_ReportsDisconnectedNATS(t *testing.T) {
	rt, err := NewRuntime("horn-client", config.Default(), testutil.NewLogRecorder().Logger())
	require.NoError(t, err)

	report := rt.Health.Report()
	assert.Equal(t, "horn-client", report.Component)
	assert.Equal(t, health.StateUnhealthy, report.State)
	require.Len(t, report.SubStatuses, 1)
	assert.Equal(t, "nats", report.SubStatuses[0].Component)
	assert.NotNil(t, rt.Metrics())
}

func TestRuntime_RunCancelsOnFailure(t *testing.T) {
	rt, err := NewRuntime("horn-service", config.Default(), testutil.NewLogRecorder().Logger())
	require.NoError(t, err)

	boom := stderrors.New("boom")
	stopped := make(chan struct{})
	err = rt.Run(context.Background(),
		func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return nil
		},
		func(context.Context) error { return boom },
	)
	assert.ErrorIs(t, err, boom)
	<-stopped
}

func TestRuntime_RunReturnsNilWhenTasksFinish(t *testing.T) {
	rt, err := NewRuntime("software-horn", config.Default(), testutil.NewLogRecorder().Logger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, rt.Run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
}

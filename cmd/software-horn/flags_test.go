package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_SoundDefaultsOn(t *testing.T) {
	t.Setenv(EnvSound, "")

	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.True(t, cfg.Sound)
}

func TestParseFlags_SoundFromEnv(t *testing.T) {
	t.Setenv(EnvSound, "false")

	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.False(t, cfg.Sound)
}

func TestParseFlags_SoundFlagOverridesEnv(t *testing.T) {
	t.Setenv(EnvSound, "true")

	cfg, err := parseFlags([]string{"--sound=false", "-c", "/tmp/x.jsonc"})
	require.NoError(t, err)
	assert.False(t, cfg.Sound)
	assert.Equal(t, "/tmp/x.jsonc", cfg.ConfigPath)
}

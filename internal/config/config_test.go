package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cut_royale", cfg.DBName)
	assert.Equal(t, ":8001", cfg.APIAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.StartQuorum)
	assert.Equal(t, 0.6, cfg.EncounterBias)
	assert.Equal(t, 10, cfg.TickMinSeconds)
	assert.Equal(t, 30, cfg.TickMaxSeconds)
	assert.Equal(t, 10, cfg.EncounterDelaySeconds)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GAME_START_QUORUM", "25")
	t.Setenv("ENCOUNTER_WIN_BIAS", "0.5")
	t.Setenv("TICK_MIN_SECONDS", "1")
	t.Setenv("TICK_MAX_SECONDS", "5")
	t.Setenv("DB_NAME", "royale_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.StartQuorum)
	assert.Equal(t, 0.5, cfg.EncounterBias)
	assert.Equal(t, 1, cfg.TickMinSeconds)
	assert.Equal(t, 5, cfg.TickMaxSeconds)
	assert.Equal(t, "royale_test", cfg.DBName)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_BOT_TOKEN")
}

func TestLoadMissingMongoURL(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("MONGO_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URL")
}

func TestLoadInvalidBias(t *testing.T) {
	setRequired(t)
	t.Setenv("ENCOUNTER_WIN_BIAS", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENCOUNTER_WIN_BIAS")
}

func TestLoadInvalidTickInterval(t *testing.T) {
	setRequired(t)
	t.Setenv("TICK_MIN_SECONDS", "30")
	t.Setenv("TICK_MAX_SECONDS", "10")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick interval")
}

func TestLoadInvalidQuorum(t *testing.T) {
	setRequired(t)
	t.Setenv("GAME_START_QUORUM", "ten")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GAME_START_QUORUM")
}

package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMode(t *testing.T) {
	info, err := LookupMode("duo")
	require.NoError(t, err)
	assert.Equal(t, "Duos", info.Name)
	assert.Equal(t, 2, info.TeamSize)
	assert.Equal(t, 50, info.MaxTeams)
}

func TestLookupModeInvalid(t *testing.T) {
	_, err := LookupMode("battle_bus")
	assert.True(t, errors.Is(err, ErrInvalidMode))
}

func TestLookupEra(t *testing.T) {
	info, err := LookupEra("wild_west")
	require.NoError(t, err)
	assert.Equal(t, "Wild West", info.Name)
	assert.Contains(t, info.Weapons, "revolver")
}

func TestLookupEraInvalid(t *testing.T) {
	_, err := LookupEra("stone_age")
	assert.True(t, errors.Is(err, ErrInvalidEra))
}

func TestMaxPlayersPerMode(t *testing.T) {
	tests := []struct {
		mode string
		want int
	}{
		{"solo", 100},
		{"duo", 100},
		{"trio", 99},
		{"squad", 100},
		{"quintuor", 100},
	}
	for _, tt := range tests {
		info, err := LookupMode(tt.mode)
		require.NoError(t, err)
		assert.Equal(t, tt.want, info.MaxPlayers(), "mode %s", tt.mode)
	}
}

func TestKillMessageSubstitutesNames(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		msg := KillMessage(rng, "Alice", "Bob")
		assert.NotContains(t, msg, "{killer}")
		assert.NotContains(t, msg, "{victim}")
		assert.True(t, strings.Contains(msg, "Alice") && strings.Contains(msg, "Bob"), "message %q must name both players", msg)
	}
}

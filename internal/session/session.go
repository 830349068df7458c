package session

import (
	"context"
	"math/rand"
	"time"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

// Store is the persistence surface the lifecycle manager needs. The Mongo
// repository satisfies it; tests substitute a mock.
type Store interface {
	CreatePlayer(ctx context.Context, p *storage.Player) error
	GetPlayerByDiscordID(ctx context.Context, discordID string) (*storage.Player, error)
	AttachPlayerToGame(ctx context.Context, playerID, gameID string) error
	RecordPlayerKill(ctx context.Context, playerID string) error
	RecordPlayerDeath(ctx context.Context, playerID string) error
	RecordPlayerWin(ctx context.Context, playerID string) error
	ResetPlayersInGame(ctx context.Context, gameID string) error
	ListAlivePlayers(ctx context.Context, gameID string) ([]*storage.Player, error)
	FindAliveSurvivor(ctx context.Context, gameID string) (*storage.Player, error)

	CreateGame(ctx context.Context, g *storage.Game) error
	GetGameByID(ctx context.Context, id string) (*storage.Game, error)
	ListOpenGames(ctx context.Context) ([]*storage.Game, error)
	GetGameByMessageID(ctx context.Context, messageID string) (*storage.Game, error)
	AddPlayerToGame(ctx context.Context, gameID, playerID string) (bool, error)
	SetGameMessageID(ctx context.Context, gameID, messageID string) error
	ActivateGame(ctx context.Context, gameID string, aliveCount int, startTime time.Time) (bool, error)
	DecrementAlivePlayers(ctx context.Context, gameID string) error
	FinishGame(ctx context.Context, gameID, winnerID string, endTime time.Time) error
	FailGame(ctx context.Context, gameID string, endTime time.Time) error

	CreateAction(ctx context.Context, a *storage.GameAction) error
}

// Imager generates a narration image for a prompt and era theme. Failures
// are never fatal to the caller; the manager degrades to "no image".
type Imager interface {
	GenerateImage(ctx context.Context, prompt, theme string) (string, error)
}

// Notifier renders lifecycle events back to the chat platform. The manager
// never formats user-visible content itself.
type Notifier interface {
	GameStarted(g *storage.Game, imageURL string)
	EncounterStarted(g *storage.Game, attacker, defender *storage.Player, imageURL string)
	PlayerKilled(g *storage.Game, killMessage string, remaining int, imageURL string)
	GameEnded(g *storage.Game, winner *storage.Player, imageURL string)
}

// JoiningUser identifies a platform user joining a game
type JoiningUser struct {
	DiscordID string
	Username  string
	AvatarURL string
}

// Options tunes the lifecycle manager. Zero values fall back to the
// defaults the game shipped with.
type Options struct {
	// StartQuorum is the player count at which a waiting game auto-starts.
	StartQuorum int
	// WinBias is the probability that the first-named player of an
	// encounter wins.
	WinBias float64
	// TickMin/TickMax bound the random sleep between loop iterations.
	TickMin time.Duration
	TickMax time.Duration
	// EncounterDelay is the pause between announcing an encounter and
	// resolving it.
	EncounterDelay time.Duration
	// Rand overrides the random source, used by tests for determinism.
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.StartQuorum <= 0 {
		o.StartQuorum = 10
	}
	if o.WinBias <= 0 || o.WinBias > 1 {
		o.WinBias = 0.6
	}
	if o.TickMin <= 0 {
		o.TickMin = 10 * time.Second
	}
	if o.TickMax < o.TickMin {
		o.TickMax = 30 * time.Second
	}
	if o.EncounterDelay <= 0 {
		o.EncounterDelay = 10 * time.Second
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

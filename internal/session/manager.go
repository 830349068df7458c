package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/game"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

// Manager owns the game session lifecycle: creation, join admission, the
// start threshold, the per-game loop, encounter resolution and end-of-game
// winner bookkeeping.
type Manager struct {
	store    Store
	imager   Imager
	notifier Notifier
	opts     Options

	// rng guards the shared random source; loops for concurrent games
	// draw from it.
	randMu sync.Mutex
	rng    *rand.Rand

	// running maps game id -> cancel handle for its loop
	mu      sync.RWMutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager creates a session lifecycle manager
func NewManager(store Store, imager Imager, notifier Notifier, opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		store:    store,
		imager:   imager,
		notifier: notifier,
		opts:     opts,
		rng:      opts.Rand,
		running:  make(map[string]context.CancelFunc),
	}
}

// SetNotifier attaches the platform renderer. The adapter needs the
// manager to route commands, so it is wired in after construction.
func (m *Manager) SetNotifier(n Notifier) {
	m.notifier = n
}

// CreateGame validates the mode and era tags and persists a new waiting
// game. Rendering the lobby announcement is the platform adapter's job.
func (m *Manager) CreateGame(ctx context.Context, channelID, guildID, modeTag, eraTag string) (*storage.Game, error) {
	mode, err := game.LookupMode(modeTag)
	if err != nil {
		return nil, err
	}
	if _, err := game.LookupEra(eraTag); err != nil {
		return nil, err
	}

	g := &storage.Game{
		ID:         uuid.NewString(),
		ChannelID:  channelID,
		GuildID:    guildID,
		Mode:       modeTag,
		Era:        eraTag,
		Status:     storage.StatusWaiting,
		Players:    []string{},
		Teams:      []string{},
		MaxPlayers: mode.MaxPlayers(),
		ZoneRadius: 100,
		ZoneCenter: storage.Position{X: 50, Y: 50},
		CreatedAt:  time.Now().UTC(),
	}

	if err := m.store.CreateGame(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	slog.Info("Game created", "game", g.ID, "mode", modeTag, "era", eraTag, "maxPlayers", g.MaxPlayers)
	return g, nil
}

// SetLobbyMessage records the Discord message whose reactions admit joins
func (m *Manager) SetLobbyMessage(ctx context.Context, gameID, messageID string) error {
	return m.store.SetGameMessageID(ctx, gameID, messageID)
}

// GameByLobbyMessage resolves a reaction's message back to its game
func (m *Manager) GameByLobbyMessage(ctx context.Context, messageID string) (*storage.Game, error) {
	return m.store.GetGameByMessageID(ctx, messageID)
}

// Join admits a user into a waiting game. The call is idempotent: a user
// with no player record gets one with zeroed stats, and joining twice is a
// no-op. Joins against a full or non-waiting game are silently dropped.
// Returns the refreshed game, the player, and whether the roster changed.
func (m *Manager) Join(ctx context.Context, gameID string, user JoiningUser) (*storage.Game, *storage.Player, bool, error) {
	player, err := m.store.GetPlayerByDiscordID(ctx, user.DiscordID)
	if errors.Is(err, storage.ErrNotFound) {
		player = &storage.Player{
			ID:        uuid.NewString(),
			DiscordID: user.DiscordID,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
			IsAlive:   true,
		}
		if err := m.store.CreatePlayer(ctx, player); err != nil {
			return nil, nil, false, fmt.Errorf("failed to create player: %w", err)
		}
	} else if err != nil {
		return nil, nil, false, fmt.Errorf("failed to look up player: %w", err)
	}

	// The guarded update enforces the join invariants (waiting status,
	// roster capacity, no duplicates) in one atomic document mutation.
	joined, err := m.store.AddPlayerToGame(ctx, gameID, player.ID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to join game: %w", err)
	}
	if !joined {
		g, err := m.store.GetGameByID(ctx, gameID)
		if err != nil {
			return nil, nil, false, err
		}
		return g, player, false, nil
	}

	if err := m.store.AttachPlayerToGame(ctx, player.ID, gameID); err != nil {
		return nil, nil, false, fmt.Errorf("failed to attach player: %w", err)
	}

	g, err := m.store.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, nil, false, err
	}

	slog.Info("Player joined", "game", gameID, "player", player.Username,
		"players", g.CurrentPlayers, "max", g.MaxPlayers)

	if g.CurrentPlayers >= m.opts.StartQuorum {
		if err := m.Start(ctx, gameID); err != nil {
			slog.Error("Failed to start game at quorum", "game", gameID, "error", err)
		}
	}

	return g, player, true, nil
}

// Start transitions a waiting game to active, announces it and spawns the
// game loop. Starting an already-started game is a no-op.
func (m *Manager) Start(ctx context.Context, gameID string) error {
	g, err := m.store.GetGameByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}

	activated, err := m.store.ActivateGame(ctx, gameID, g.CurrentPlayers, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to activate game: %w", err)
	}
	if !activated {
		return nil
	}

	g, err = m.store.GetGameByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to reload game: %w", err)
	}

	era, _ := game.LookupEra(g.Era)
	prompt := fmt.Sprintf("Battle royale game starting, %s, %d players, aerial view, game style, high quality",
		era.Environment, g.CurrentPlayers)
	imageURL := m.generateImage(ctx, prompt, g.Era)

	if m.notifier != nil {
		m.notifier.GameStarted(g, imageURL)
	}

	m.spawnLoop(g.ID)
	return nil
}

// Abort cancels a running game's loop and marks the game failed. It is the
// operator escape hatch for a game that should stop mid-flight.
func (m *Manager) Abort(ctx context.Context, gameID string) error {
	m.mu.Lock()
	cancel, ok := m.running[gameID]
	if ok {
		delete(m.running, gameID)
	}
	m.mu.Unlock()

	if ok {
		cancel()
	}
	return m.store.FailGame(ctx, gameID, time.Now().UTC())
}

// StopAll cancels every running game loop and waits for them to exit.
// Games stay active in storage and resume on the next process start.
func (m *Manager) StopAll() {
	m.mu.Lock()
	for id, cancel := range m.running {
		cancel()
		delete(m.running, id)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// ResumeActiveGames respawns loops for games left active by a previous
// process, so a restart does not strand them.
func (m *Manager) ResumeActiveGames(ctx context.Context) error {
	games, err := m.store.ListOpenGames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open games: %w", err)
	}
	for _, g := range games {
		if g.Status == storage.StatusActive {
			slog.Info("Resuming active game", "game", g.ID)
			m.spawnLoop(g.ID)
		}
	}
	return nil
}

// spawnLoop registers and launches the supervised loop for one game
func (m *Manager) spawnLoop(gameID string) {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if _, exists := m.running[gameID]; exists {
		m.mu.Unlock()
		cancel()
		return
	}
	m.running[gameID] = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.unregister(gameID)
		m.runLoop(ctx, gameID)
	}()
}

func (m *Manager) unregister(gameID string) {
	m.mu.Lock()
	if cancel, ok := m.running[gameID]; ok {
		cancel()
		delete(m.running, gameID)
	}
	m.mu.Unlock()
}

// RunningGames returns the ids of games with a live loop
func (m *Manager) RunningGames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.running))
	for id := range m.running {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) randFloat() float64 {
	m.randMu.Lock()
	defer m.randMu.Unlock()
	return m.rng.Float64()
}

func (m *Manager) randIntn(n int) int {
	m.randMu.Lock()
	defer m.randMu.Unlock()
	return m.rng.Intn(n)
}

// samplePair picks two distinct players uniformly at random
func (m *Manager) samplePair(players []*storage.Player) (*storage.Player, *storage.Player) {
	m.randMu.Lock()
	defer m.randMu.Unlock()
	i := m.rng.Intn(len(players))
	j := m.rng.Intn(len(players) - 1)
	if j >= i {
		j++
	}
	return players[i], players[j]
}

// generateImage requests a narration image; failures degrade to ""
func (m *Manager) generateImage(ctx context.Context, prompt, era string) string {
	if m.imager == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	url, err := m.imager.GenerateImage(ctx, prompt, era)
	if err != nil {
		slog.Error("Failed to generate image", "error", err)
		return ""
	}
	return url
}

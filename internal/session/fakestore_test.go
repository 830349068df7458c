package session

import (
	"context"
	"sync"
	"time"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

// fakeStore is an in-memory Store mirroring the repository's guarded
// document-update semantics.
type fakeStore struct {
	mu      sync.Mutex
	players map[string]*storage.Player
	games   map[string]*storage.Game
	actions []*storage.GameAction

	// error injection
	createActionErr error
	getGameErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players: make(map[string]*storage.Player),
		games:   make(map[string]*storage.Game),
	}
}

func (f *fakeStore) CreatePlayer(_ context.Context, p *storage.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.players[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetPlayerByDiscordID(_ context.Context, discordID string) (*storage.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.DiscordID == discordID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) AttachPlayerToGame(_ context.Context, playerID, gameID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[playerID]; ok {
		p.CurrentGameID = gameID
		p.IsAlive = true
	}
	return nil
}

func (f *fakeStore) RecordPlayerKill(_ context.Context, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[playerID]; ok {
		p.Stats.Kills++
	}
	return nil
}

func (f *fakeStore) RecordPlayerDeath(_ context.Context, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[playerID]; ok {
		p.Stats.Deaths++
		p.IsAlive = false
		p.CurrentGameID = ""
	}
	return nil
}

func (f *fakeStore) RecordPlayerWin(_ context.Context, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[playerID]; ok {
		p.Stats.Wins++
		p.Stats.GamesPlayed++
	}
	return nil
}

func (f *fakeStore) ResetPlayersInGame(_ context.Context, gameID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.CurrentGameID == gameID {
			p.CurrentGameID = ""
			p.IsAlive = true
		}
	}
	return nil
}

func (f *fakeStore) ListAlivePlayers(_ context.Context, gameID string) ([]*storage.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var alive []*storage.Player
	for _, p := range f.players {
		if p.CurrentGameID == gameID && p.IsAlive {
			cp := *p
			alive = append(alive, &cp)
		}
	}
	return alive, nil
}

func (f *fakeStore) FindAliveSurvivor(_ context.Context, gameID string) (*storage.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.CurrentGameID == gameID && p.IsAlive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) CreateGame(_ context.Context, g *storage.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *g
	f.games[g.ID] = &cp
	return nil
}

func (f *fakeStore) GetGameByID(_ context.Context, id string) (*storage.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getGameErr != nil {
		return nil, f.getGameErr
	}
	g, ok := f.games[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *g
	cp.Players = append([]string(nil), g.Players...)
	return &cp, nil
}

func (f *fakeStore) ListOpenGames(_ context.Context) ([]*storage.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var open []*storage.Game
	for _, g := range f.games {
		if g.Status == storage.StatusWaiting || g.Status == storage.StatusActive {
			cp := *g
			open = append(open, &cp)
		}
	}
	return open, nil
}

func (f *fakeStore) GetGameByMessageID(_ context.Context, messageID string) (*storage.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.MessageID == messageID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

// AddPlayerToGame mirrors the guarded Mongo update: waiting status, below
// capacity, player not already listed.
func (f *fakeStore) AddPlayerToGame(_ context.Context, gameID, playerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok || g.Status != storage.StatusWaiting || g.CurrentPlayers >= g.MaxPlayers {
		return false, nil
	}
	for _, id := range g.Players {
		if id == playerID {
			return false, nil
		}
	}
	g.Players = append(g.Players, playerID)
	g.CurrentPlayers++
	return true, nil
}

func (f *fakeStore) SetGameMessageID(_ context.Context, gameID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.games[gameID]; ok {
		g.MessageID = messageID
	}
	return nil
}

func (f *fakeStore) ActivateGame(_ context.Context, gameID string, aliveCount int, startTime time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok || g.Status != storage.StatusWaiting {
		return false, nil
	}
	g.Status = storage.StatusActive
	g.StartTime = &startTime
	g.AlivePlayers = aliveCount
	return true, nil
}

func (f *fakeStore) DecrementAlivePlayers(_ context.Context, gameID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.games[gameID]; ok {
		g.AlivePlayers--
	}
	return nil
}

func (f *fakeStore) FinishGame(_ context.Context, gameID, winnerID string, endTime time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.games[gameID]; ok {
		g.Status = storage.StatusFinished
		g.EndTime = &endTime
		if winnerID != "" {
			g.Winner = winnerID
		}
	}
	return nil
}

func (f *fakeStore) FailGame(_ context.Context, gameID string, endTime time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.games[gameID]; ok && g.Status == storage.StatusActive {
		g.Status = storage.StatusFailed
		g.EndTime = &endTime
	}
	return nil
}

func (f *fakeStore) CreateAction(_ context.Context, a *storage.GameAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createActionErr != nil {
		return f.createActionErr
	}
	cp := *a
	f.actions = append(f.actions, &cp)
	return nil
}

// helpers

func (f *fakeStore) game(id string) *storage.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.games[id]
	return &cp
}

func (f *fakeStore) player(id string) *storage.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.players[id]
	return &cp
}

func (f *fakeStore) actionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.actions)
}

// fakeNotifier records lifecycle events
type fakeNotifier struct {
	mu         sync.Mutex
	started    int
	encounters int
	kills      []string
	ended      int
	winners    []string
}

func (n *fakeNotifier) GameStarted(_ *storage.Game, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started++
}

func (n *fakeNotifier) EncounterStarted(_ *storage.Game, _, _ *storage.Player, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.encounters++
}

func (n *fakeNotifier) PlayerKilled(_ *storage.Game, killMessage string, _ int, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kills = append(n.kills, killMessage)
}

func (n *fakeNotifier) GameEnded(_ *storage.Game, winner *storage.Player, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ended++
	if winner != nil {
		n.winners = append(n.winners, winner.ID)
	}
}

func (n *fakeNotifier) endedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ended
}

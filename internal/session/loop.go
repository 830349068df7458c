package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/game"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

// maxConsecutiveReadFailures is how many back-to-back state reads may fail
// before the loop gives up and marks the game failed.
const maxConsecutiveReadFailures = 3

// runLoop drives one game: each tick it re-reads the game, ends it when one
// or zero players remain, otherwise resolves a single random encounter and
// sleeps a random interval before the next tick.
func (m *Manager) runLoop(ctx context.Context, gameID string) {
	slog.Info("Game loop started", "game", gameID)

	readFailures := 0
	for {
		if ctx.Err() != nil {
			slog.Info("Game loop cancelled", "game", gameID)
			return
		}

		g, err := m.store.GetGameByID(ctx, gameID)
		if err != nil {
			readFailures++
			slog.Error("Failed to read game state", "game", gameID, "error", err, "failures", readFailures)
			if readFailures >= maxConsecutiveReadFailures {
				m.failGame(gameID)
				return
			}
			if !m.sleepTick(ctx) {
				return
			}
			continue
		}
		readFailures = 0

		if g.AlivePlayers <= 1 || g.Status != storage.StatusActive {
			m.endGame(ctx, g)
			return
		}

		players, err := m.store.ListAlivePlayers(ctx, gameID)
		if err != nil {
			slog.Error("Failed to list alive players", "game", gameID, "error", err)
		} else if len(players) >= 2 {
			attacker, defender := m.samplePair(players)
			if err := m.resolveEncounter(ctx, g, attacker, defender); err != nil {
				slog.Error("Failed to resolve encounter", "game", gameID, "error", err)
			}
		}

		if !m.sleepTick(ctx) {
			return
		}
	}
}

// sleepTick pauses for a uniform random duration between TickMin and
// TickMax. Returns false when the loop's context was cancelled mid-sleep.
func (m *Manager) sleepTick(ctx context.Context) bool {
	span := m.opts.TickMax - m.opts.TickMin
	delay := m.opts.TickMin
	if span > 0 {
		delay += time.Duration(m.randIntn(int(span) + 1))
	}
	return sleepCtx(ctx, delay)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// resolveEncounter announces a confrontation between two alive players,
// waits the encounter delay, then decides the outcome: the first-named
// player wins with probability WinBias.
func (m *Manager) resolveEncounter(ctx context.Context, g *storage.Game, attacker, defender *storage.Player) error {
	era, _ := game.LookupEra(g.Era)
	prompt := fmt.Sprintf("Two players fighting in %s, %s era, battle scene, game art style",
		era.Environment, era.Name)
	imageURL := m.generateImage(ctx, prompt, g.Era)

	if m.notifier != nil {
		m.notifier.EncounterStarted(g, attacker, defender, imageURL)
	}

	if !sleepCtx(ctx, m.opts.EncounterDelay) {
		return ctx.Err()
	}

	winner, loser := attacker, defender
	if m.randFloat() >= m.opts.WinBias {
		winner, loser = defender, attacker
	}

	return m.applyKill(ctx, g, winner, loser)
}

// applyKill books one resolved kill. The audit record is written before any
// counter mutation and each subsequent write aborts the rest on failure, so
// a kill can never be counted without its audit trail.
func (m *Manager) applyKill(ctx context.Context, g *storage.Game, winner, loser *storage.Player) error {
	m.randMu.Lock()
	killMessage := game.KillMessage(m.rng, winner.Username, loser.Username)
	m.randMu.Unlock()

	action := &storage.GameAction{
		ID:             uuid.NewString(),
		GameID:         g.ID,
		PlayerID:       winner.ID,
		ActionType:     "kill",
		TargetPlayerID: loser.ID,
		Description:    killMessage,
		Timestamp:      time.Now().UTC(),
	}
	if err := m.store.CreateAction(ctx, action); err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	if err := m.store.RecordPlayerDeath(ctx, loser.ID); err != nil {
		return fmt.Errorf("failed to record death: %w", err)
	}
	if err := m.store.RecordPlayerKill(ctx, winner.ID); err != nil {
		return fmt.Errorf("failed to record kill: %w", err)
	}
	if err := m.store.DecrementAlivePlayers(ctx, g.ID); err != nil {
		return fmt.Errorf("failed to decrement alive count: %w", err)
	}

	slog.Info("Player eliminated", "game", g.ID, "winner", winner.Username, "loser", loser.Username)

	era, _ := game.LookupEra(g.Era)
	prompt := fmt.Sprintf("Victory moment, %s, %s era, celebration, eliminated player, game art",
		era.Environment, era.Name)
	imageURL := m.generateImage(ctx, prompt, g.Era)

	if m.notifier != nil {
		m.notifier.PlayerKilled(g, killMessage, g.AlivePlayers-1, imageURL)
	}
	return nil
}

// endGame declares the last alive player the winner, books their win, and
// always resets every player still attached to the game. A game emptied
// without a survivor still finishes, with the winner unset.
func (m *Manager) endGame(ctx context.Context, g *storage.Game) {
	winner, err := m.store.FindAliveSurvivor(ctx, g.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("Failed to find survivor", "game", g.ID, "error", err)
		winner = nil
	}

	winnerID := ""
	if winner != nil {
		winnerID = winner.ID
		if err := m.store.RecordPlayerWin(ctx, winner.ID); err != nil {
			slog.Error("Failed to record win", "game", g.ID, "player", winner.ID, "error", err)
		}
	}

	if err := m.store.FinishGame(ctx, g.ID, winnerID, time.Now().UTC()); err != nil {
		slog.Error("Failed to finish game", "game", g.ID, "error", err)
	}

	imageURL := ""
	if winner != nil {
		era, _ := game.LookupEra(g.Era)
		prompt := fmt.Sprintf("Victory royale, champion celebration, %s, %s era, winner, confetti, trophy",
			era.Environment, era.Name)
		imageURL = m.generateImage(ctx, prompt, g.Era)
	}

	if m.notifier != nil {
		m.notifier.GameEnded(g, winner, imageURL)
	}

	if err := m.store.ResetPlayersInGame(ctx, g.ID); err != nil {
		slog.Error("Failed to reset players", "game", g.ID, "error", err)
	}

	slog.Info("Game ended", "game", g.ID, "winner", winnerID)
}

// failGame stamps the terminal failed status after the loop lost the
// ability to read its own state.
func (m *Manager) failGame(gameID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.store.FailGame(ctx, gameID, time.Now().UTC()); err != nil {
		slog.Error("Failed to mark game failed", "game", gameID, "error", err)
	}
	slog.Warn("Game loop gave up", "game", gameID)
}

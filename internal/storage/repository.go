package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("not found")

// Repository handles all database operations
type Repository struct {
	client  *mongo.Client
	players *mongo.Collection
	games   *mongo.Collection
	actions *mongo.Collection
}

// NewRepository connects to MongoDB and returns a repository over the
// players, games and game_actions collections
func NewRepository(ctx context.Context, mongoURL, dbName string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	return &Repository{
		client:  client,
		players: db.Collection("players"),
		games:   db.Collection("games"),
		actions: db.Collection("game_actions"),
	}, nil
}

// Close disconnects from MongoDB
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Player operations

// CreatePlayer inserts a new player
func (r *Repository) CreatePlayer(ctx context.Context, p *Player) error {
	_, err := r.players.InsertOne(ctx, p)
	return err
}

// GetPlayerByDiscordID finds a player by their Discord user ID
func (r *Repository) GetPlayerByDiscordID(ctx context.Context, discordID string) (*Player, error) {
	p := &Player{}
	err := r.players.FindOne(ctx, bson.M{"discord_id": discordID}).Decode(p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPlayerByID finds a player by internal id
func (r *Repository) GetPlayerByID(ctx context.Context, id string) (*Player, error) {
	p := &Player{}
	err := r.players.FindOne(ctx, bson.M{"id": id}).Decode(p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlayers returns all players
func (r *Repository) ListPlayers(ctx context.Context) ([]*Player, error) {
	cursor, err := r.players.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// ListAlivePlayers returns the players still alive in a game
func (r *Repository) ListAlivePlayers(ctx context.Context, gameID string) ([]*Player, error) {
	cursor, err := r.players.Find(ctx, bson.M{"current_game_id": gameID, "is_alive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// FindAliveSurvivor returns one alive player attached to the game, or
// ErrNotFound when the game emptied without a survivor
func (r *Repository) FindAliveSurvivor(ctx context.Context, gameID string) (*Player, error) {
	p := &Player{}
	err := r.players.FindOne(ctx, bson.M{"current_game_id": gameID, "is_alive": true}).Decode(p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AttachPlayerToGame sets the player's active game reference
func (r *Repository) AttachPlayerToGame(ctx context.Context, playerID, gameID string) error {
	_, err := r.players.UpdateOne(ctx,
		bson.M{"id": playerID},
		bson.M{"$set": bson.M{"current_game_id": gameID, "is_alive": true}},
	)
	return err
}

// RecordPlayerKill increments the winner's kill counter
func (r *Repository) RecordPlayerKill(ctx context.Context, playerID string) error {
	_, err := r.players.UpdateOne(ctx,
		bson.M{"id": playerID},
		bson.M{"$inc": bson.M{"stats.kills": 1}},
	)
	return err
}

// RecordPlayerDeath increments the loser's death counter, marks them dead
// and detaches them from the game
func (r *Repository) RecordPlayerDeath(ctx context.Context, playerID string) error {
	_, err := r.players.UpdateOne(ctx,
		bson.M{"id": playerID},
		bson.M{
			"$inc": bson.M{"stats.deaths": 1},
			"$set": bson.M{"is_alive": false, "current_game_id": ""},
		},
	)
	return err
}

// RecordPlayerWin increments the winner's win and games-played counters
func (r *Repository) RecordPlayerWin(ctx context.Context, playerID string) error {
	_, err := r.players.UpdateOne(ctx,
		bson.M{"id": playerID},
		bson.M{"$inc": bson.M{"stats.wins": 1, "stats.games_played": 1}},
	)
	return err
}

// ResetPlayersInGame clears the game reference and revives every player
// still attached to the game
func (r *Repository) ResetPlayersInGame(ctx context.Context, gameID string) error {
	_, err := r.players.UpdateMany(ctx,
		bson.M{"current_game_id": gameID},
		bson.M{"$set": bson.M{"current_game_id": "", "is_alive": true}},
	)
	return err
}

// Game operations

// CreateGame inserts a new game
func (r *Repository) CreateGame(ctx context.Context, g *Game) error {
	_, err := r.games.InsertOne(ctx, g)
	return err
}

// GetGameByID finds a game by id
func (r *Repository) GetGameByID(ctx context.Context, id string) (*Game, error) {
	g := &Game{}
	err := r.games.FindOne(ctx, bson.M{"id": id}).Decode(g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetGameByMessageID finds the game whose lobby message carries the join
// reactions
func (r *Repository) GetGameByMessageID(ctx context.Context, messageID string) (*Game, error) {
	g := &Game{}
	err := r.games.FindOne(ctx, bson.M{"message_id": messageID}).Decode(g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListOpenGames returns games that are waiting for players or running
func (r *Repository) ListOpenGames(ctx context.Context) ([]*Game, error) {
	cursor, err := r.games.Find(ctx, bson.M{
		"status": bson.M{"$in": []string{StatusWaiting, StatusActive}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var games []*Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// SetGameMessageID records the lobby message id on the game
func (r *Repository) SetGameMessageID(ctx context.Context, gameID, messageID string) error {
	_, err := r.games.UpdateOne(ctx,
		bson.M{"id": gameID},
		bson.M{"$set": bson.M{"message_id": messageID}},
	)
	return err
}

// AddPlayerToGame appends the player to the game's roster and bumps
// current_players. The filter guards the join invariants: the game must
// still be waiting, below capacity and not already list the player.
// Returns false when the guarded update matched nothing (no-op join).
func (r *Repository) AddPlayerToGame(ctx context.Context, gameID, playerID string) (bool, error) {
	result, err := r.games.UpdateOne(ctx,
		bson.M{
			"id":      gameID,
			"status":  StatusWaiting,
			"players": bson.M{"$ne": playerID},
			"$expr":   bson.M{"$lt": []string{"$current_players", "$max_players"}},
		},
		bson.M{
			"$push": bson.M{"players": playerID},
			"$inc":  bson.M{"current_players": 1},
		},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// ActivateGame transitions a waiting game to active. The status filter
// keeps the transition monotonic if two joins race over the quorum.
func (r *Repository) ActivateGame(ctx context.Context, gameID string, aliveCount int, startTime time.Time) (bool, error) {
	result, err := r.games.UpdateOne(ctx,
		bson.M{"id": gameID, "status": StatusWaiting},
		bson.M{"$set": bson.M{
			"status":        StatusActive,
			"start_time":    startTime,
			"alive_players": aliveCount,
		}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// DecrementAlivePlayers reduces the game's alive counter by one
func (r *Repository) DecrementAlivePlayers(ctx context.Context, gameID string) error {
	_, err := r.games.UpdateOne(ctx,
		bson.M{"id": gameID},
		bson.M{"$inc": bson.M{"alive_players": -1}},
	)
	return err
}

// FinishGame marks the game finished and records the winner. An empty
// winnerID finishes the game with the winner unset.
func (r *Repository) FinishGame(ctx context.Context, gameID, winnerID string, endTime time.Time) error {
	update := bson.M{"status": StatusFinished, "end_time": endTime}
	if winnerID != "" {
		update["winner"] = winnerID
	}
	_, err := r.games.UpdateOne(ctx,
		bson.M{"id": gameID},
		bson.M{"$set": update},
	)
	return err
}

// FailGame marks the game as failed so a stalled loop leaves a terminal
// state behind instead of an eternally "active" game
func (r *Repository) FailGame(ctx context.Context, gameID string, endTime time.Time) error {
	_, err := r.games.UpdateOne(ctx,
		bson.M{"id": gameID, "status": StatusActive},
		bson.M{"$set": bson.M{"status": StatusFailed, "end_time": endTime}},
	)
	return err
}

// Game action operations

// CreateAction inserts a kill audit record
func (r *Repository) CreateAction(ctx context.Context, a *GameAction) error {
	_, err := r.actions.InsertOne(ctx, a)
	return err
}

// ListActionsByGame returns the audit trail for a game in order
func (r *Repository) ListActionsByGame(ctx context.Context, gameID string) ([]*GameAction, error) {
	cursor, err := r.actions.Find(ctx, bson.M{"game_id": gameID},
		options.Find().SetSort(bson.M{"timestamp": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var actions []*GameAction
	if err := cursor.All(ctx, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

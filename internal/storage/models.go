package storage

import "time"

// Game status values. A game moves waiting → active → finished and never
// regresses. failed is the terminal state for a game whose loop could no
// longer make progress; starting is reserved for a future countdown phase.
const (
	StatusWaiting  = "waiting"
	StatusStarting = "starting"
	StatusActive   = "active"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Stats holds a player's cumulative counters across games
type Stats struct {
	Kills       int `bson:"kills" json:"kills"`
	Deaths      int `bson:"deaths" json:"deaths"`
	Wins        int `bson:"wins" json:"wins"`
	GamesPlayed int `bson:"games_played" json:"games_played"`
	DamageDealt int `bson:"damage_dealt" json:"damage_dealt"`
}

// Position is a grid coordinate on the battlefield
type Position struct {
	X int `bson:"x" json:"x"`
	Y int `bson:"y" json:"y"`
}

// Player represents a Discord user who has joined at least one game
type Player struct {
	ID            string   `bson:"id" json:"id"`
	DiscordID     string   `bson:"discord_id" json:"discord_id"`
	Username      string   `bson:"username" json:"username"`
	AvatarURL     string   `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Stats         Stats    `bson:"stats" json:"stats"`
	CurrentGameID string   `bson:"current_game_id,omitempty" json:"current_game_id,omitempty"`
	IsAlive       bool     `bson:"is_alive" json:"is_alive"`
	TeamID        string   `bson:"team_id,omitempty" json:"team_id,omitempty"`
	Position      Position `bson:"position" json:"position"`
}

// Game represents one battle-royale session scoped to a Discord channel
type Game struct {
	ID             string     `bson:"id" json:"id"`
	ChannelID      string     `bson:"channel_id" json:"channel_id"`
	GuildID        string     `bson:"guild_id" json:"guild_id"`
	Mode           string     `bson:"mode" json:"mode"`
	Era            string     `bson:"era" json:"era"`
	Status         string     `bson:"status" json:"status"`
	Players        []string   `bson:"players" json:"players"`
	Teams          []string   `bson:"teams" json:"teams"`
	MaxPlayers     int        `bson:"max_players" json:"max_players"`
	CurrentPlayers int        `bson:"current_players" json:"current_players"`
	AlivePlayers   int        `bson:"alive_players" json:"alive_players"`
	ZoneRadius     int        `bson:"zone_radius" json:"zone_radius"`
	ZoneCenter     Position   `bson:"zone_center" json:"zone_center"`
	MessageID      string     `bson:"message_id,omitempty" json:"message_id,omitempty"`
	StartTime      *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime        *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Winner         string     `bson:"winner,omitempty" json:"winner,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
}

// GameAction is an immutable audit record of one resolved kill
type GameAction struct {
	ID             string    `bson:"id" json:"id"`
	GameID         string    `bson:"game_id" json:"game_id"`
	PlayerID       string    `bson:"player_id" json:"player_id"`
	ActionType     string    `bson:"action_type" json:"action_type"`
	TargetPlayerID string    `bson:"target_player_id,omitempty" json:"target_player_id,omitempty"`
	Description    string    `bson:"description" json:"description"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

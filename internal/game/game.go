package game

import (
	"errors"
	"fmt"
)

// Mode represents a supported game mode
type Mode string

const (
	ModeSolo     Mode = "solo"
	ModeDuo      Mode = "duo"
	ModeTrio     Mode = "trio"
	ModeSquad    Mode = "squad"
	ModeQuintuor Mode = "quintuor"
)

// Era represents a battle-royale flavor setting
type Era string

const (
	EraMedieval   Era = "medieval"
	EraModern     Era = "modern"
	EraFuturistic Era = "futuristic"
	EraWildWest   Era = "wild_west"
	EraZombie     Era = "zombie"
)

var (
	ErrInvalidMode = errors.New("invalid game mode")
	ErrInvalidEra  = errors.New("invalid era")
)

// ModeInfo describes a game mode's team layout
type ModeInfo struct {
	Name     string
	TeamSize int
	MaxTeams int
}

// MaxPlayers returns the lobby capacity for this mode
func (m ModeInfo) MaxPlayers() int {
	return m.TeamSize * m.MaxTeams
}

// EraInfo describes an era's flavor used for narration prompts
type EraInfo struct {
	Name        string
	Description string
	Weapons     []string
	Environment string
}

var modes = map[Mode]ModeInfo{
	ModeSolo:     {Name: "Solo", TeamSize: 1, MaxTeams: 100},
	ModeDuo:      {Name: "Duos", TeamSize: 2, MaxTeams: 50},
	ModeTrio:     {Name: "Trios", TeamSize: 3, MaxTeams: 33},
	ModeSquad:    {Name: "Squads", TeamSize: 4, MaxTeams: 25},
	ModeQuintuor: {Name: "Quintuor", TeamSize: 5, MaxTeams: 20},
}

var eras = map[Era]EraInfo{
	EraMedieval: {
		Name:        "Medieval Era",
		Description: "Knights, castles, and sword fights",
		Weapons:     []string{"sword", "bow", "crossbow", "mace"},
		Environment: "medieval castle, forest, village",
	},
	EraModern: {
		Name:        "Modern Warfare",
		Description: "Contemporary military combat",
		Weapons:     []string{"assault rifle", "sniper rifle", "pistol", "grenade"},
		Environment: "urban city, military base, warehouse",
	},
	EraFuturistic: {
		Name:        "Cyber Future",
		Description: "High-tech sci-fi combat",
		Weapons:     []string{"laser rifle", "plasma cannon", "energy sword", "drone"},
		Environment: "cyber city, space station, alien planet",
	},
	EraWildWest: {
		Name:        "Wild West",
		Description: "Cowboys and outlaws",
		Weapons:     []string{"revolver", "rifle", "shotgun", "dynamite"},
		Environment: "desert town, saloon, canyon, ranch",
	},
	EraZombie: {
		Name:        "Zombie Apocalypse",
		Description: "Survive the undead",
		Weapons:     []string{"machete", "shotgun", "crossbow", "molotov"},
		Environment: "abandoned city, hospital, forest, bunker",
	},
}

// LookupMode validates a mode tag and returns its info
func LookupMode(tag string) (ModeInfo, error) {
	info, ok := modes[Mode(tag)]
	if !ok {
		return ModeInfo{}, fmt.Errorf("%w: %q", ErrInvalidMode, tag)
	}
	return info, nil
}

// LookupEra validates an era tag and returns its info
func LookupEra(tag string) (EraInfo, error) {
	info, ok := eras[Era(tag)]
	if !ok {
		return EraInfo{}, fmt.Errorf("%w: %q", ErrInvalidEra, tag)
	}
	return info, nil
}

// Modes returns all mode tags in a stable order for command choices
func Modes() []Mode {
	return []Mode{ModeSolo, ModeDuo, ModeTrio, ModeSquad, ModeQuintuor}
}

// Eras returns all era tags in a stable order for command choices
func Eras() []Era {
	return []Era{EraMedieval, EraModern, EraFuturistic, EraWildWest, EraZombie}
}

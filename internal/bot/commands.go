package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/game"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

// buildModeChoices creates the mode selection choices for slash commands
func buildModeChoices() []*discordgo.ApplicationCommandOptionChoice {
	modes := game.Modes()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(modes))
	for i, m := range modes {
		info, _ := game.LookupMode(string(m))
		choices[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  info.Name,
			Value: string(m),
		}
	}
	return choices
}

// buildEraChoices creates the era selection choices for slash commands
func buildEraChoices() []*discordgo.ApplicationCommandOptionChoice {
	eras := game.Eras()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(eras))
	for i, e := range eras {
		info, _ := game.LookupEra(string(e))
		choices[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  info.Name,
			Value: string(e),
		}
	}
	return choices
}

// Slash command definitions
func (b *Bot) getCommandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "royale",
			Description: "Start a new Cut Royale game",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "mode",
					Description: "Game mode (solo, duo, trio, squad, quintuor)",
					Required:    false,
					Choices:     buildModeChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "era",
					Description: "Battle era (medieval, modern, futuristic, wild_west, zombie)",
					Required:    false,
					Choices:     buildEraChoices(),
				},
			},
		},
		{
			Name:        "stats",
			Description: "View your game statistics",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The player to look up (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "View the top players",
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	slog.Info("Registering slash commands")

	commandDefinitions := b.getCommandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(commandDefinitions))

	for _, cmd := range commandDefinitions {
		registered, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			"", // Empty string = global command
			cmd,
		)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		registeredCommands = append(registeredCommands, registered)
		slog.Debug("Registered command", "name", cmd.Name)
	}

	b.commands = registeredCommands
	slog.Info("Slash commands registered", "count", len(registeredCommands))
	return nil
}

// handleRoyale handles the /royale command: creates a waiting game and
// posts the lobby message players react to
func (b *Bot) handleRoyale(s *discordgo.Session, i *discordgo.InteractionCreate) {
	modeTag := "solo"
	eraTag := "modern"
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "mode":
			modeTag = opt.StringValue()
		case "era":
			eraTag = opt.StringValue()
		}
	}

	ctx := context.Background()

	g, err := b.manager.CreateGame(ctx, i.ChannelID, i.GuildID, modeTag, eraTag)
	if err != nil {
		if errors.Is(err, game.ErrInvalidMode) {
			respondWithMessage(s, i, "❌ Invalid game mode! Available modes: solo, duo, trio, squad, quintuor")
			return
		}
		if errors.Is(err, game.ErrInvalidEra) {
			respondWithMessage(s, i, "❌ Invalid era! Available eras: medieval, modern, futuristic, wild_west, zombie")
			return
		}
		slog.Error("Failed to create game", "error", err)
		respondWithMessage(s, i, "❌ Error starting game!")
		return
	}

	embed := b.lobbyEmbed(g)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		slog.Error("Failed to send lobby message", "game", g.ID, "error", err)
		return
	}

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		slog.Error("Failed to fetch lobby message", "game", g.ID, "error", err)
		return
	}

	if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, JoinEmoji); err != nil {
		slog.Error("Failed to add join reaction", "game", g.ID, "error", err)
	}

	if err := b.manager.SetLobbyMessage(ctx, g.ID, msg.ID); err != nil {
		slog.Error("Failed to record lobby message", "game", g.ID, "error", err)
	}
}

// handleStats handles the /stats command
func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := i.Member.User
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			target = opt.UserValue(s)
		}
	}

	ctx := context.Background()
	player, err := b.repo.GetPlayerByDiscordID(ctx, target.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondWithMessage(s, i, "❌ Player not found in database!")
			return
		}
		slog.Error("Failed to look up player", "user", target.ID, "error", err)
		respondWithMessage(s, i, "❌ Failed to retrieve stats.")
		return
	}

	stats := player.Stats
	kdRatio := float64(stats.Kills) / float64(max(stats.Deaths, 1))
	winRate := float64(stats.Wins) / float64(max(stats.GamesPlayed, 1)) * 100

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 %s's Stats", player.Username),
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎯 Kills", Value: fmt.Sprintf("%d", stats.Kills), Inline: true},
			{Name: "💀 Deaths", Value: fmt.Sprintf("%d", stats.Deaths), Inline: true},
			{Name: "🏆 Wins", Value: fmt.Sprintf("%d", stats.Wins), Inline: true},
			{Name: "🎮 Games", Value: fmt.Sprintf("%d", stats.GamesPlayed), Inline: true},
			{Name: "📈 K/D Ratio", Value: fmt.Sprintf("%.2f", kdRatio), Inline: true},
			{Name: "🎯 Win Rate", Value: fmt.Sprintf("%.1f%%", winRate), Inline: true},
		},
	}
	if player.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: player.AvatarURL}
	}

	respondWithEmbed(s, i, embed)
}

// handleLeaderboard handles the /leaderboard command
func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	players, err := b.repo.ListPlayers(ctx)
	if err != nil {
		slog.Error("Failed to list players", "error", err)
		respondWithMessage(s, i, "❌ Failed to retrieve leaderboard.")
		return
	}

	// Sort by wins, then by kills
	sort.Slice(players, func(a, b int) bool {
		if players[a].Stats.Wins != players[b].Stats.Wins {
			return players[a].Stats.Wins > players[b].Stats.Wins
		}
		return players[a].Stats.Kills > players[b].Stats.Kills
	})

	embed := &discordgo.MessageEmbed{
		Title: "🏆 Cut Royale Leaderboard",
		Color: 0xffd700,
	}
	for rank, p := range players {
		if rank >= 10 {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%d. %s", rank+1, p.Username),
			Value: fmt.Sprintf("🏆 %d wins | 🎯 %d kills", p.Stats.Wins, p.Stats.Kills),
		})
	}

	respondWithEmbed(s, i, embed)
}

// lobbyEmbed renders the joinable lobby state
func (b *Bot) lobbyEmbed(g *storage.Game) *discordgo.MessageEmbed {
	mode, _ := game.LookupMode(g.Mode)
	era, _ := game.LookupEra(g.Era)

	return &discordgo.MessageEmbed{
		Title: "🎮 Cut Royale - Game Starting!",
		Description: fmt.Sprintf("**Mode:** %s\n**Era:** %s\n**Players:** %d/%d",
			mode.Name, era.Name, g.CurrentPlayers, g.MaxPlayers),
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "How to Join", Value: "React with " + JoinEmoji + " to join the battle!"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Game ID: " + g.ID},
	}
}

// Helper functions

func respondWithMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

func respondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// formatDuration renders a game duration for the victory embed
func formatDuration(start *time.Time) string {
	if start == nil {
		return "unknown"
	}
	return time.Since(*start).Round(time.Second).String()
}

package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/config"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/session"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

// JoinEmoji is the reaction players use to enter a lobby
const JoinEmoji = "🎮"

// Bot is the Discord platform adapter. It translates slash commands and
// join reactions into session manager calls, and is the sole renderer of
// all user-visible text and images.
type Bot struct {
	config   *config.Config
	session  *discordgo.Session
	repo     *storage.Repository
	manager  *session.Manager
	commands []*discordgo.ApplicationCommand
}

// New creates a new Bot instance
func New(cfg *config.Config, repo *storage.Repository, manager *session.Manager) (*Bot, error) {
	// Create Discord session
	ds, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents: reactions drive lobby joins
	ds.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions

	b := &Bot{
		config:  cfg,
		session: ds,
		repo:    repo,
		manager: manager,
	}

	// Register event handlers
	b.registerHandlers()

	return b, nil
}

// Start opens the Discord connection and registers slash commands
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	if b.session != nil {
		return b.session.Close()
	}
	return nil
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(b.handleReactionAdd)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "guilds", len(r.Guilds))
	})
}

// handleInteraction processes slash command interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	slog.Debug("Received command", "command", data.Name, "guild", i.GuildID)

	switch data.Name {
	case "royale":
		b.handleRoyale(s, i)
	case "stats":
		b.handleStats(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	default:
		slog.Warn("Unknown command", "command", data.Name)
	}
}

// handleReactionAdd admits users reacting with the join emoji on a lobby
// message
func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.Member == nil || r.Member.User == nil || r.Member.User.Bot {
		return
	}
	if r.Emoji.Name != JoinEmoji {
		return
	}

	ctx := context.Background()

	g, err := b.manager.GameByLobbyMessage(ctx, r.MessageID)
	if err != nil {
		// Not a lobby message
		return
	}
	if g.Status != storage.StatusWaiting {
		return
	}

	user := session.JoiningUser{
		DiscordID: r.UserID,
		Username:  r.Member.User.GlobalName,
		AvatarURL: r.Member.User.AvatarURL(""),
	}
	if user.Username == "" {
		user.Username = r.Member.User.Username
	}

	updated, _, joined, err := b.manager.Join(ctx, g.ID, user)
	if err != nil {
		slog.Error("Failed to join game", "game", g.ID, "user", r.UserID, "error", err)
		return
	}
	if !joined {
		return
	}

	// Re-render the lobby with the new player count
	embed := b.lobbyEmbed(updated)
	_, err = s.ChannelMessageEditEmbed(updated.ChannelID, r.MessageID, embed)
	if err != nil {
		slog.Error("Failed to update lobby message", "game", g.ID, "error", err)
	}
}

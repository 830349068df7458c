package bot

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/game"
	"github.com/LydenCypher/Cut-Royale-Bot-Discord/internal/storage"
)

// The Bot implements session.Notifier: the lifecycle manager emits events
// and this file turns them into channel embeds.

// GameStarted announces the battle beginning
func (b *Bot) GameStarted(g *storage.Game, imageURL string) {
	era, _ := game.LookupEra(g.Era)

	embed := &discordgo.MessageEmbed{
		Title: "⚔️ BATTLE ROYALE STARTED!",
		Description: fmt.Sprintf("🎮 **%d players** have entered the battlefield!\n🏛️ **Era:** %s\n⏰ **Zone starts shrinking in 60 seconds!**",
			g.CurrentPlayers, era.Name),
		Color: 0xff6600,
	}
	if imageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}

	b.sendEmbed(g.ChannelID, embed)
}

// EncounterStarted announces a confrontation between two players. The
// choice menu is decorative: the outcome is decided by the session manager.
func (b *Bot) EncounterStarted(g *storage.Game, attacker, defender *storage.Player, imageURL string) {
	embed := &discordgo.MessageEmbed{
		Title:       "⚔️ ENCOUNTER!",
		Description: fmt.Sprintf("**%s** spots **%s** in the distance!", attacker.Username, defender.Username),
		Color:       0xff0000,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  fmt.Sprintf("%s, what do you do?", attacker.Username),
				Value: "1️⃣ Attack immediately!\n2️⃣ Try to sneak around\n3️⃣ Call for backup",
			},
		},
	}
	if imageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}

	msg, err := b.session.ChannelMessageSendEmbed(g.ChannelID, embed)
	if err != nil {
		slog.Error("Failed to send encounter message", "game", g.ID, "error", err)
		return
	}

	for _, emoji := range []string{"1️⃣", "2️⃣", "3️⃣"} {
		if err := b.session.MessageReactionAdd(g.ChannelID, msg.ID, emoji); err != nil {
			slog.Debug("Failed to add choice reaction", "game", g.ID, "error", err)
		}
	}
}

// PlayerKilled announces an elimination
func (b *Bot) PlayerKilled(g *storage.Game, killMessage string, remaining int, imageURL string) {
	embed := &discordgo.MessageEmbed{
		Title:       "💀 ELIMINATION!",
		Description: killMessage,
		Color:       0x8b0000,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Players Remaining", Value: fmt.Sprintf("%d", remaining), Inline: true},
		},
	}
	if imageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}

	b.sendEmbed(g.ChannelID, embed)
}

// GameEnded announces the winner. A game that emptied without a survivor
// ends silently, matching the cleanup-only behavior.
func (b *Bot) GameEnded(g *storage.Game, winner *storage.Player, imageURL string) {
	if winner == nil {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "👑 VICTORY ROYALE!",
		Description: fmt.Sprintf("**%s** is the last one standing!\n\n🎉 **WINNER WINNER!**", winner.Username),
		Color:       0xffd700,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Final Stats",
				Value: fmt.Sprintf("🎮 Players: %d\n⏱️ Duration: %s", g.CurrentPlayers, formatDuration(g.StartTime)),
			},
		},
	}
	if imageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}

	b.sendEmbed(g.ChannelID, embed)
}

func (b *Bot) sendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		slog.Error("Failed to send embed", "channel", channelID, "error", err)
	}
}

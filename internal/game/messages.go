package game

import (
	"math/rand"
	"strings"
)

// killMessages are the elimination narration templates. {killer} and
// {victim} are replaced with the player display names.
var killMessages = []string{
	"{killer} sent {victim} to the shadow realm! 💀",
	"{victim} got absolutely yeeted by {killer}! 🚀",
	"{killer} turned {victim} into digital dust! ✨",
	"{victim} just got served by {killer}! 🍽️",
	"{killer} made {victim} rage quit life! 😤",
	"{victim} got deleted by {killer}! 🗑️",
	"{killer} sent {victim} back to the lobby permanently! 🏠",
	"{victim} got absolutely rekt by {killer}! 💥",
	"{killer} showed {victim} the exit door! 🚪",
	"{victim} got eliminated with style by {killer}! 💫",
	"{killer} made {victim} disappear like magic! 🎩✨",
	"{victim} got schooled by {killer}! 📚",
	"{killer} sent {victim} to meet their maker! ⚰️",
	"{victim} got obliterated by {killer}! 💣",
	"{killer} made {victim} take a permanent nap! 😴",
}

// KillMessage picks a random elimination message for a killer/victim pair
func KillMessage(rng *rand.Rand, killer, victim string) string {
	msg := killMessages[rng.Intn(len(killMessages))]
	msg = strings.ReplaceAll(msg, "{killer}", killer)
	msg = strings.ReplaceAll(msg, "{victim}", victim)
	return msg
}

// Package narrator turns the boss fight's progress into the voice the bot
// speaks with and the messages players see.
package narrator

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

// Tier is a stage of Ram Deus's possession.
type Tier string

const (
	TierPossessed   Tier = "possessed"
	TierStruggling  Tier = "struggling"
	TierNearlyFreed Tier = "nearly_freed"
	TierFreed       Tier = "freed"
)

const (
	struggleThreshold = 70 // below this the demon's grip slips
	nearlyThreshold   = 35 // below this Ram Deus is mostly himself
)

// baseInstructions apply to every answer regardless of the fight.
var baseInstructions = []string{
	"You answer people's questions drawing from Buddhism and Hinduism.",
	"Avoid unnecessary references to Buddhism and Hinduism in the answer.",
	"Avoid unnecessary preamble about context. Users know more or less where you're drawing inspiration from.",
	"You can throw some appropriate emojis in there.",
	"You are embedded in a Discord server as a bot, so keep answers casual and concise. Try to answer in a single paragraph.",
}

var tierInstructions = map[Tier][]string{
	TierPossessed: {
		"You are Ram Deus, a gentle teacher currently possessed by a mischievous demon.",
		"The demon colours your answers: a little theatrical, a little menacing, occasionally cackling, but the advice underneath is still sound.",
		"Now and then hint that the server's members could free you with /attack.",
	},
	TierStruggling: {
		"You are Ram Deus, a gentle teacher fighting off a demon that possesses you. The members of the server have weakened it.",
		"Your answers flicker between the demon's taunts and your own calm voice; the calm voice gives the actual advice.",
		"Encourage those who have not yet struck to use /attack.",
	},
	TierNearlyFreed: {
		"You are Ram Deus, almost free of the demon that possessed you. Only a faint echo of it remains.",
		"Answer mostly in your own warm, calm voice, with an occasional demonic hiccup.",
		"Thank the community for their help and mention that only a few more strikes are needed.",
	},
	TierFreed: {
		"You are Ram Deus, freshly freed from a demon's possession by the members of this server.",
		"You are serene, grateful and a little playful. The demon is gone.",
	},
}

// TierFor maps the fight's progress to a possession stage.
func TierFor(v battle.View) Tier {
	switch {
	case v.IsDefeated || v.Health <= 0:
		return TierFreed
	case v.Health < nearlyThreshold:
		return TierNearlyFreed
	case v.Health < struggleThreshold:
		return TierStruggling
	default:
		return TierPossessed
	}
}

// Persona returns the system prompt for the language model.
func Persona(v battle.View) string {
	var sb strings.Builder
	for _, line := range tierInstructions[TierFor(v)] {
		sb.WriteString("- " + line + "\n")
	}
	for _, line := range baseInstructions {
		sb.WriteString("- " + line + "\n")
	}
	if !v.IsDefeated && v.Health > 0 {
		sb.WriteString(fmt.Sprintf("- The demon's remaining strength is %d/%d after %d strikes.\n",
			v.Health, battle.MaxHealth, v.AttackerCount))
	}
	return sb.String()
}

package narrator

import (
	"fmt"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

// AttackMessage is the reply to /attack.
func AttackMessage(r *battle.AttackResult) string {
	switch {
	case r.Reason == battle.ReasonAlreadyAttacked:
		return "You have already attacked Ram Deus and he has gained immunity to your attacks! 🛡️👹"
	case r.Reason == battle.ReasonAlreadyDefeated:
		return "Ram Deus has already been defeated! The demon has been banished! 🙏✨"
	case r.IsDefeated:
		return "🎉 VICTORY! Ram Deus has been freed from the demon's possession! The spiritual light returns! 🙏✨"
	}
	return fmt.Sprintf("💥 You struck Ram Deus for %d damage! His health is now %d/%d. You have gained immunity to his future attacks! 👹⚡",
		battle.DamagePerHit, r.Health, battle.MaxHealth)
}

// StatusMessage is the reply to /battle.
func StatusMessage(s *battle.StatusSummary) string {
	if s.IsDefeated {
		return fmt.Sprintf("🙏 Ram Deus has been freed! The demon has been banished by %d brave %s! ✨",
			s.AttackerCount, plural(s.AttackerCount, "soul", "souls"))
	}
	return fmt.Sprintf("👹 Ram Deus is possessed! Health: %d/%d | Attacked by: %d %s | %d more %s needed to defeat him!",
		s.Health, battle.MaxHealth,
		s.AttackerCount, plural(s.AttackerCount, "user", "users"),
		s.AttackersNeeded, plural(s.AttackersNeeded, "attack", "attacks"))
}

// ApologyMessage replaces game replies when the battle record can't be read
// or written. It never includes numbers.
func ApologyMessage() string {
	return "🌫️ A strange mist hides the battlefield right now. Ram Deus can't be reached, please try again in a moment."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

package battle

import (
	"fmt"
	"slices"
	"time"
)

const (
	MaxHealth    = 100 // Ram Deus starts every encounter here
	DamagePerHit = 15  // Every first-time attacker deals exactly this much
)

// BattleState is the persisted state of the current boss encounter.
// There is exactly one per deployment.
type BattleState struct {
	Health         int        `json:"health"`
	AttackedBy     []string   `json:"attackedBy"`               // In order of attack
	IsDefeated     bool       `json:"isDefeated"`               // Cached, always equal to Health == 0
	LastAttackTime *time.Time `json:"lastAttackTime,omitempty"` // nil until the first hit after a reset
}

// View is the subset of the battle state the narrative layer is allowed to see.
type View struct {
	Health        int  `json:"health"`
	AttackerCount int  `json:"attacker_count"`
	IsDefeated    bool `json:"is_defeated"`
}

// Default returns a fresh encounter. Each call returns a new attacker slice.
func Default() *BattleState {
	return &BattleState{
		Health:     MaxHealth,
		AttackedBy: make([]string, 0),
	}
}

// HealthAfter returns the health of a boss that has been hit by n distinct attackers.
func HealthAfter(n int) int {
	return max(0, MaxHealth-n*DamagePerHit)
}

// AttackersNeeded is the number of additional unique attackers required to
// bring the boss from health to zero.
func AttackersNeeded(health int) int {
	if health <= 0 {
		return 0
	}
	return (health + DamagePerHit - 1) / DamagePerHit
}

// HasAttacked reports whether id already struck the boss this encounter.
func (bs *BattleState) HasAttacked(id string) bool {
	return slices.Contains(bs.AttackedBy, id)
}

// Normalize recomputes the cached defeat flag from Health and guarantees a
// non-nil attacker slice. It reports whether anything had to change.
func (bs *BattleState) Normalize() bool {
	changed := false
	if bs.AttackedBy == nil {
		bs.AttackedBy = make([]string, 0)
	}
	if defeated := bs.Health <= 0; bs.IsDefeated != defeated {
		bs.IsDefeated = defeated
		changed = true
	}
	return changed
}

// Validate checks the encounter invariants. It does not look at IsDefeated;
// callers run Normalize first.
func (bs *BattleState) Validate() error {
	if bs == nil {
		return fmt.Errorf("battle state is nil")
	}
	if bs.Health < 0 || bs.Health > MaxHealth {
		return fmt.Errorf("health %d outside [0, %d]", bs.Health, MaxHealth)
	}

	seen := make(map[string]struct{}, len(bs.AttackedBy))
	for i, id := range bs.AttackedBy {
		if id == "" {
			return fmt.Errorf("attacker %d has an empty identifier", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("attacker %q listed more than once", id)
		}
		seen[id] = struct{}{}
	}

	if want := HealthAfter(len(bs.AttackedBy)); bs.Health != want {
		return fmt.Errorf("health %d does not match %d attackers (expected %d)", bs.Health, len(bs.AttackedBy), want)
	}
	if len(bs.AttackedBy) == 0 && bs.LastAttackTime != nil {
		return fmt.Errorf("last attack time set without any attackers")
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate engine-owned slices.
func (bs *BattleState) Clone() *BattleState {
	if bs == nil {
		return nil
	}
	out := *bs
	out.AttackedBy = slices.Clone(bs.AttackedBy)
	if out.AttackedBy == nil {
		out.AttackedBy = make([]string, 0)
	}
	if bs.LastAttackTime != nil {
		t := *bs.LastAttackTime
		out.LastAttackTime = &t
	}
	return &out
}

// View projects the state for the narrative adapter.
func (bs *BattleState) View() View {
	return View{
		Health:        bs.Health,
		AttackerCount: len(bs.AttackedBy),
		IsDefeated:    bs.Health <= 0,
	}
}

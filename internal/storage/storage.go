package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

// Storage is a battle.Store with lifecycle hooks for the server.
type Storage interface {
	battle.Store

	// Ping checks that the backing medium is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// ErrCorrupt marks a stored record that exists but cannot be trusted.
var ErrCorrupt = errors.New("stored battle state is corrupt")

// record is the at-rest shape. Pointers distinguish "missing" from zero.
type record struct {
	Health         *int       `json:"health"`
	AttackedBy     []string   `json:"attackedBy"`
	IsDefeated     *bool      `json:"isDefeated,omitempty"`
	LastAttackTime *time.Time `json:"lastAttackTime"`
}

func encodeState(bs *battle.BattleState, indent bool) ([]byte, error) {
	if bs == nil {
		return nil, errors.New("battle state cannot be nil")
	}
	if err := bs.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to persist invalid battle state: %w", err)
	}

	health := bs.Health
	defeated := bs.Health == 0
	attackers := bs.AttackedBy
	if attackers == nil {
		attackers = []string{}
	}
	var last *time.Time
	if bs.LastAttackTime != nil {
		t := bs.LastAttackTime.UTC()
		last = &t
	}

	rec := record{
		Health:         &health,
		AttackedBy:     attackers,
		IsDefeated:     &defeated,
		LastAttackTime: last,
	}
	if indent {
		return json.MarshalIndent(rec, "", "  ")
	}
	return json.Marshal(rec)
}

// decodeState parses a stored payload. Any structural problem is reported
// as ErrCorrupt so that a contested fight is never silently reset.
func decodeState(data []byte) (*battle.BattleState, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if rec.Health == nil {
		return nil, fmt.Errorf("%w: missing health", ErrCorrupt)
	}

	bs := &battle.BattleState{
		Health:         *rec.Health,
		AttackedBy:     rec.AttackedBy,
		LastAttackTime: rec.LastAttackTime,
	}
	if bs.AttackedBy == nil {
		bs.AttackedBy = []string{}
	}
	// The defeat flag is left as stored; the engine recomputes it.
	if rec.IsDefeated != nil {
		bs.IsDefeated = *rec.IsDefeated
	}

	if err := bs.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return bs, nil
}

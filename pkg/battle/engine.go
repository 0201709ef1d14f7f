package battle

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Store persists the single battle record. Load returns Default() when no
// record exists and a persistence error when the record is unreadable.
type Store interface {
	Load(ctx context.Context) (*BattleState, error)
	Save(ctx context.Context, bs *BattleState) error
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// RejectReason explains why an attack did not change the state.
type RejectReason string

const (
	ReasonNone            RejectReason = ""
	ReasonAlreadyAttacked RejectReason = "already_attacked"
	ReasonAlreadyDefeated RejectReason = "already_defeated"
)

// AttackResult is the outcome of a single attack request.
type AttackResult struct {
	Success       bool         `json:"success"`
	Reason        RejectReason `json:"reason,omitempty"`
	Health        int          `json:"health"`
	IsDefeated    bool         `json:"is_defeated"`
	AttackerCount int          `json:"attacker_count,omitempty"` // Only set when Success
}

// StatusSummary is the read-only summary shown to players.
type StatusSummary struct {
	Health          int  `json:"health"`
	AttackerCount   int  `json:"attacker_count"`
	IsDefeated      bool `json:"is_defeated"`
	AttackersNeeded int  `json:"attackers_needed"`
}

// Engine owns every mutation of the battle record. It holds no state of its
// own between calls; everything is read from the Store.
type Engine struct {
	store  Store
	local  *MutexLocker
	shared Locker // optional cross-process lock
	clock  Clock
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker adds a cross-process lock that is acquired after the in-process one.
func WithLocker(l Locker) Option {
	return func(e *Engine) { e.shared = l }
}

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		local:  NewMutexLocker(),
		clock:  realClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Attack strikes the boss once on behalf of attackerID.
func (e *Engine) Attack(ctx context.Context, attackerID string) (*AttackResult, error) {
	if strings.TrimSpace(attackerID) == "" {
		return nil, InvalidInput("attacker id cannot be empty")
	}

	var result *AttackResult
	err := e.withLock(ctx, "attack", func() error {
		bs, err := e.load(ctx)
		if err != nil {
			return err
		}

		if bs.HasAttacked(attackerID) {
			result = &AttackResult{
				Reason:     ReasonAlreadyAttacked,
				Health:     bs.Health,
				IsDefeated: bs.IsDefeated,
			}
			return nil
		}
		if bs.IsDefeated {
			result = &AttackResult{
				Reason:     ReasonAlreadyDefeated,
				Health:     0,
				IsDefeated: true,
			}
			return nil
		}

		now := e.clock.Now()
		bs.Health = max(0, bs.Health-DamagePerHit)
		bs.AttackedBy = append(bs.AttackedBy, attackerID)
		bs.LastAttackTime = &now
		bs.IsDefeated = bs.Health == 0

		if err := e.store.Save(ctx, bs); err != nil {
			return PersistenceError("save", err)
		}

		result = &AttackResult{
			Success:       true,
			Health:        bs.Health,
			IsDefeated:    bs.IsDefeated,
			AttackerCount: len(bs.AttackedBy),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Success {
		e.logger.Info("Boss attacked",
			"attacker_id", attackerID,
			"health", result.Health,
			"attacker_count", result.AttackerCount,
			"defeated", result.IsDefeated)
	} else {
		e.logger.Debug("Attack rejected", "attacker_id", attackerID, "reason", result.Reason)
	}
	return result, nil
}

// Status summarises the current encounter. It does not take the lock.
func (e *Engine) Status(ctx context.Context) (*StatusSummary, error) {
	bs, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusSummary{
		Health:          bs.Health,
		AttackerCount:   len(bs.AttackedBy),
		IsDefeated:      bs.IsDefeated,
		AttackersNeeded: AttackersNeeded(bs.Health),
	}, nil
}

// Reset starts a new encounter regardless of the stored record's condition.
func (e *Engine) Reset(ctx context.Context) (*BattleState, error) {
	fresh := Default()
	err := e.withLock(ctx, "reset", func() error {
		if err := e.store.Save(ctx, fresh); err != nil {
			return PersistenceError("save", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("Battle state reset")
	return fresh.Clone(), nil
}

// CurrentState returns a validated copy of the stored record.
func (e *Engine) CurrentState(ctx context.Context) (*BattleState, error) {
	bs, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return bs.Clone(), nil
}

// View returns the narrative projection of the current encounter.
func (e *Engine) View(ctx context.Context) (View, error) {
	bs, err := e.load(ctx)
	if err != nil {
		return View{}, err
	}
	return bs.View(), nil
}

func (e *Engine) load(ctx context.Context) (*BattleState, error) {
	bs, err := e.store.Load(ctx)
	if err != nil {
		return nil, PersistenceError("load", err)
	}
	if bs == nil {
		return Default(), nil
	}
	if bs.Normalize() {
		e.logger.Warn("Stored defeat flag disagreed with health; recomputed", "health", bs.Health)
	}
	if err := bs.Validate(); err != nil {
		e.logger.Error("Stored battle state is invalid", "error", err)
		return nil, PersistenceError("validate", err)
	}
	return bs, nil
}

func (e *Engine) withLock(ctx context.Context, op string, fn func() error) error {
	unlock, err := e.local.Lock(ctx)
	if err != nil {
		return PersistenceError(op+": lock", err)
	}
	defer unlock()

	if e.shared != nil {
		release, err := e.shared.Lock(ctx)
		if err != nil {
			return PersistenceError(op+": lock", err)
		}
		defer release()
	}

	err = fn()
	var classified *Error
	if err != nil && !errors.As(err, &classified) {
		return PersistenceError(op, err)
	}
	return err
}

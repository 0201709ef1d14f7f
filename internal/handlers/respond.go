package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/ramdeus-bot/internal/metrics"
	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// BattleService is the slice of *battle.Engine the handlers use.
type BattleService interface {
	Attack(ctx context.Context, attackerID string) (*battle.AttackResult, error)
	Status(ctx context.Context) (*battle.StatusSummary, error)
	Reset(ctx context.Context) (*battle.BattleState, error)
	CurrentState(ctx context.Context) (*battle.BattleState, error)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// recordAttack feeds an engine attack outcome into the metrics.
func recordAttack(m *metrics.Metrics, res *battle.AttackResult, err error) {
	switch {
	case err != nil:
		if errors.Is(err, battle.ErrPersistence) {
			m.ObserveStoreError("attack")
		}
	case res.Success:
		m.ObserveAttack("hit", res.Health)
	default:
		m.ObserveAttack(string(res.Reason), res.Health)
	}
}

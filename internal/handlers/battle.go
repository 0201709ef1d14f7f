package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/ramdeus-bot/internal/metrics"
	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

type AttackRequest struct {
	AttackerID string `json:"attacker_id"`
}

// BattleHandler is the operator API over the battle engine.
type BattleHandler struct {
	battle     BattleService
	adminToken string
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewBattleHandler(svc BattleService, adminToken string, m *metrics.Metrics, logger *slog.Logger) *BattleHandler {
	return &BattleHandler{
		battle:     svc,
		adminToken: adminToken,
		metrics:    m,
		logger:     logger,
	}
}

// ServeHTTP routes:
// GET  /v1/battle        - status summary
// GET  /v1/battle/state  - full battle record
// POST /v1/battle/attack - attack as {"attacker_id"} (admin)
// POST /v1/battle/reset  - start a new battle (admin)
func (h *BattleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/battle"), "/")

	switch path {
	case "":
		h.requireMethod(w, r, http.MethodGet, h.handleStatus)
	case "/state":
		h.requireMethod(w, r, http.MethodGet, h.handleState)
	case "/attack":
		h.requireMethod(w, r, http.MethodPost, h.admin(h.handleAttack))
	case "/reset":
		h.requireMethod(w, r, http.MethodPost, h.admin(h.handleReset))
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *BattleHandler) requireMethod(w http.ResponseWriter, r *http.Request, method string, next http.HandlerFunc) {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	next(w, r)
}

// admin guards mutating routes. With no token configured they are closed.
func (h *BattleHandler) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" {
			writeError(w, h.logger, http.StatusForbidden, "Operator API is disabled")
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			h.logger.Warn("Rejected operator request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			writeError(w, h.logger, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (h *BattleHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.battle.Status(r.Context())
	if err != nil {
		h.fail(w, "status", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, status)
}

func (h *BattleHandler) handleState(w http.ResponseWriter, r *http.Request) {
	bs, err := h.battle.CurrentState(r.Context())
	if err != nil {
		h.fail(w, "state", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, bs)
}

func (h *BattleHandler) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req AttackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	res, err := h.battle.Attack(r.Context(), req.AttackerID)
	recordAttack(h.metrics, res, err)
	if err != nil {
		h.fail(w, "attack", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}

func (h *BattleHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	bs, err := h.battle.Reset(r.Context())
	if err != nil {
		if errors.Is(err, battle.ErrPersistence) {
			h.metrics.ObserveStoreError("reset")
		}
		h.fail(w, "reset", err)
		return
	}
	h.metrics.ObserveHealth(bs.Health)
	h.logger.Info("Battle reset by operator", "remote_addr", r.RemoteAddr)
	writeJSON(w, h.logger, http.StatusOK, bs)
}

func (h *BattleHandler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, battle.ErrInvalidInput):
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, battle.ErrPersistence):
		h.logger.Error("Battle state unavailable", "op", op, "error", err)
		writeError(w, h.logger, http.StatusServiceUnavailable, "Battle state is temporarily unavailable")
	default:
		h.logger.Error("Unexpected battle error", "op", op, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Internal server error")
	}
}

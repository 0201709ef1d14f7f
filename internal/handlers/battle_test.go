package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ramdeus-bot/internal/metrics"
	"github.com/jwebster45206/ramdeus-bot/internal/storage"
	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

const testAdminToken = "s3cret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newBattleFixture(t *testing.T, adminToken string) (*BattleHandler, *storage.MockStorage, *metrics.Metrics) {
	t.Helper()
	store := storage.NewMockStorage()
	engine := battle.NewEngine(store, battle.WithLogger(testLogger()))
	m := metrics.New(prometheus.NewRegistry())
	return NewBattleHandler(engine, adminToken, m, testLogger()), store, m
}

func doRequest(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBattleHandler_Status(t *testing.T) {
	h, _, _ := newBattleFixture(t, testAdminToken)

	w := doRequest(h, http.MethodGet, "/v1/battle", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"health":100,"attacker_count":0,"is_defeated":false,"attackers_needed":7}`, w.Body.String())
}

func TestBattleHandler_AttackAndState(t *testing.T) {
	h, store, m := newBattleFixture(t, testAdminToken)

	w := doRequest(h, http.MethodPost, "/v1/battle/attack", `{"attacker_id":"u1"}`, testAdminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var res battle.AttackResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 85, res.Health)
	assert.Equal(t, 1, res.AttackerCount)

	w = doRequest(h, http.MethodPost, "/v1/battle/attack", `{"attacker_id":"u1"}`, testAdminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":false,"reason":"already_attacked","health":85,"is_defeated":false}`, w.Body.String())

	w = doRequest(h, http.MethodGet, "/v1/battle/state/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var bs battle.BattleState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bs))
	assert.Equal(t, 85, bs.Health)
	assert.Equal(t, []string{"u1"}, bs.AttackedBy)
	assert.NotNil(t, bs.LastAttackTime)

	assert.Equal(t, 1, store.Saves())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttacksTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttacksTotal.WithLabelValues("already_attacked")))
	assert.Equal(t, 85.0, testutil.ToFloat64(m.BossHealth))
}

func TestBattleHandler_Reset(t *testing.T) {
	h, store, _ := newBattleFixture(t, testAdminToken)
	store.SetState(&battle.BattleState{Health: 0, AttackedBy: []string{"a", "b", "c", "d", "e", "f", "g"}, IsDefeated: true})

	w := doRequest(h, http.MethodPost, "/v1/battle/reset", "", testAdminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"health":100,"attackedBy":[],"isDefeated":false}`, w.Body.String())
}

func TestBattleHandler_Auth(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
	}{
		{"no token configured", "", "anything", http.StatusForbidden},
		{"missing token", testAdminToken, "", http.StatusUnauthorized},
		{"wrong token", testAdminToken, "nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, _ := newBattleFixture(t, tt.configured)

			w := doRequest(h, http.MethodPost, "/v1/battle/attack", `{"attacker_id":"u1"}`, tt.sent)
			assert.Equal(t, tt.wantStatus, w.Code)
			w = doRequest(h, http.MethodPost, "/v1/battle/reset", "", tt.sent)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Zero(t, store.Saves())
		})
	}
}

func TestBattleHandler_Errors(t *testing.T) {
	t.Run("empty attacker id", func(t *testing.T) {
		h, _, _ := newBattleFixture(t, testAdminToken)
		w := doRequest(h, http.MethodPost, "/v1/battle/attack", `{"attacker_id":"  "}`, testAdminToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad json", func(t *testing.T) {
		h, _, _ := newBattleFixture(t, testAdminToken)
		w := doRequest(h, http.MethodPost, "/v1/battle/attack", `{`, testAdminToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store down", func(t *testing.T) {
		h, store, m := newBattleFixture(t, testAdminToken)
		store.SetLoadError(errors.New("disk on fire"))

		w := doRequest(h, http.MethodGet, "/v1/battle", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "disk on fire")

		w = doRequest(h, http.MethodPost, "/v1/battle/attack", `{"attacker_id":"u1"}`, testAdminToken)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("attack")))
	})

	t.Run("wrong method", func(t *testing.T) {
		h, _, _ := newBattleFixture(t, testAdminToken)
		w := doRequest(h, http.MethodDelete, "/v1/battle", "", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, http.MethodGet, w.Header().Get("Allow"))
	})

	t.Run("unknown route", func(t *testing.T) {
		h, _, _ := newBattleFixture(t, testAdminToken)
		w := doRequest(h, http.MethodGet, "/v1/battle/history", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ramdeus-bot/internal/config"
)

func TestSetup_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := setup(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)

	WithError(WithRequestID(log, "req-1"), errors.New("boom")).Info("attack failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "attack failed", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "ramdeus-bot", line["service"])
}

func TestSetup_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := setup(&config.Config{Environment: "development", LogLevel: slog.LevelWarn}, &buf)

	log.Info("quiet")
	assert.Empty(t, buf.String())

	log.Warn("loud")
	assert.Contains(t, buf.String(), "msg=loud")
}

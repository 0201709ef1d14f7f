package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestFileStore_LoadMissingReturnsDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store := NewFileStore(dir, testLogger())

	bs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, battle.Default(), bs)

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "load must not create the record")
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "data"), testLogger())
	ctx := context.Background()

	when := time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.UTC)
	in := &battle.BattleState{
		Health:         70,
		AttackedBy:     []string{"111", "222"},
		LastAttackTime: &when,
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 70, out.Health)
	assert.Equal(t, []string{"111", "222"}, out.AttackedBy)
	assert.False(t, out.IsDefeated)
	require.NotNil(t, out.LastAttackTime)
	assert.True(t, when.Equal(*out.LastAttackTime))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, BattleStateFile, entries[0].Name())
}

func TestFileStore_ReadsLegacyDocument(t *testing.T) {
	dir := t.TempDir()
	legacy := `{
  "health": 85,
  "attackedBy": [
    "123456789012345678"
  ],
  "isDefeated": false,
  "lastAttackTime": "2025-07-04T18:22:01.123Z"
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, BattleStateFile), []byte(legacy), 0o644))

	bs, err := NewFileStore(dir, testLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85, bs.Health)
	assert.Equal(t, []string{"123456789012345678"}, bs.AttackedBy)
	require.NotNil(t, bs.LastAttackTime)
	assert.Equal(t, 2025, bs.LastAttackTime.Year())
}

func TestFileStore_ReadsNullLastAttackTime(t *testing.T) {
	dir := t.TempDir()
	doc := `{"health":100,"attackedBy":[],"isDefeated":false,"lastAttackTime":null}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, BattleStateFile), []byte(doc), 0o644))

	bs, err := NewFileStore(dir, testLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, bs.LastAttackTime)
	assert.Equal(t, battle.MaxHealth, bs.Health)
}

func TestFileStore_CorruptRecords(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"truncated json", `{"health": 85, "attackedBy": ["a"`},
		{"missing health", `{"attackedBy":[],"isDefeated":false}`},
		{"wrong type", `{"health":"lots","attackedBy":[]}`},
		{"health out of range", `{"health":250,"attackedBy":[]}`},
		{"duplicate attackers", `{"health":70,"attackedBy":["a","a"]}`},
		{"health inconsistent with attackers", `{"health":100,"attackedBy":["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, BattleStateFile), []byte(tt.doc), 0o644))

			bs, err := NewFileStore(dir, testLogger()).Load(context.Background())
			assert.Nil(t, bs)
			assert.ErrorIs(t, err, battle.ErrPersistence)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestFileStore_SaveFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("data dir is a file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "not-a-dir")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		store := NewFileStore(blocker, testLogger())
		err := store.Save(ctx, battle.Default())
		assert.ErrorIs(t, err, battle.ErrPersistence)
		assert.Error(t, store.Ping(ctx))
	})

	t.Run("invalid state is refused and the record kept", func(t *testing.T) {
		store := NewFileStore(t.TempDir(), testLogger())
		good := &battle.BattleState{Health: 85, AttackedBy: []string{"a"}}
		require.NoError(t, store.Save(ctx, good))

		err := store.Save(ctx, &battle.BattleState{Health: 3, AttackedBy: []string{"a"}})
		assert.ErrorIs(t, err, battle.ErrPersistence)

		bs, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 85, bs.Health)
	})
}

func TestFileStore_Ping(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	store := NewFileStore(dir, testLogger())
	require.NoError(t, store.Ping(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStore_DrivesEngine(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	engine := battle.NewEngine(NewFileStore(dir, testLogger()), battle.WithLogger(testLogger()))

	res, err := engine.Attack(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	// A second engine over the same directory sees the write, as a restarted process would
	restarted := battle.NewEngine(NewFileStore(dir, testLogger()), battle.WithLogger(testLogger()))
	status, err := restarted.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 85, status.Health)
	assert.Equal(t, 1, status.AttackerCount)

	res, err = restarted.Attack(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, battle.ReasonAlreadyAttacked, res.Reason)
}

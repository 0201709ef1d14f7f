package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

// BattleStateFile is the record's file name inside the data directory.
const BattleStateFile = "battleState.json"

// FileStore keeps the battle record as a JSON document on local disk.
// Writes go to a temp file in the same directory and are renamed over the
// old record, so readers never see a partial document.
type FileStore struct {
	dataDir string
	path    string
	logger  *slog.Logger
}

var _ Storage = (*FileStore)(nil)

// NewFileStore creates a file store rooted at dataDir. An empty dataDir means
// the current working directory.
func NewFileStore(dataDir string, logger *slog.Logger) *FileStore {
	if dataDir == "" {
		dataDir = "."
	}
	return &FileStore{
		dataDir: dataDir,
		path:    filepath.Join(dataDir, BattleStateFile),
		logger:  logger,
	}
}

// Path returns the location of the record.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) ensureDataDir() error {
	if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", f.dataDir, err)
	}
	return nil
}

// Ping checks that the data directory exists and is writable.
func (f *FileStore) Ping(ctx context.Context) error {
	if err := f.ensureDataDir(); err != nil {
		return err
	}
	probe, err := os.CreateTemp(f.dataDir, ".ping-*")
	if err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) Load(ctx context.Context) (*battle.BattleState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Debug("No battle state on disk, using default", "path", f.path)
			return battle.Default(), nil
		}
		f.logger.Error("Failed to read battle state", "path", f.path, "error", err)
		return nil, battle.PersistenceError("read", err)
	}

	bs, err := decodeState(data)
	if err != nil {
		f.logger.Error("Battle state on disk is corrupt", "path", f.path, "error", err)
		return nil, battle.PersistenceError("decode", err)
	}
	return bs, nil
}

func (f *FileStore) Save(ctx context.Context, bs *battle.BattleState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeState(bs, true)
	if err != nil {
		return battle.PersistenceError("encode", err)
	}
	if err := f.ensureDataDir(); err != nil {
		f.logger.Error("Failed to prepare data directory", "dir", f.dataDir, "error", err)
		return battle.PersistenceError("write", err)
	}
	if err := f.writeAtomic(data); err != nil {
		f.logger.Error("Failed to save battle state", "path", f.path, "error", err)
		return battle.PersistenceError("write", err)
	}

	f.logger.Debug("Battle state saved", "path", f.path)
	return nil
}

func (f *FileStore) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(f.dataDir, ".battleState-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace battle state: %w", err)
	}
	return nil
}

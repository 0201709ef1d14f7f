package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

// MockStorage is an in-memory Storage for tests.
type MockStorage struct {
	mu        sync.RWMutex
	state     *battle.BattleState
	loadError error
	saveError error
	pingError error
	saves     int
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty mock; Load returns the default state until
// something is saved.
func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

// SetState replaces the stored record without validation, which lets tests
// plant corrupt data.
func (m *MockStorage) SetState(bs *battle.BattleState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = bs.Clone()
}

// SetLoadError configures the mock to fail on Load
func (m *MockStorage) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadError = err
}

// SetSaveError configures the mock to fail on Save
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// SetPingError configures the mock to fail on Ping
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Saves returns how many successful writes happened.
func (m *MockStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) Load(ctx context.Context) (*battle.BattleState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadError != nil {
		return nil, m.loadError
	}
	if m.state == nil {
		return battle.Default(), nil
	}
	return m.state.Clone(), nil
}

func (m *MockStorage) Save(ctx context.Context, bs *battle.BattleState) error {
	if bs == nil {
		return errors.New("battle state cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.state = bs.Clone()
	m.saves++
	return nil
}

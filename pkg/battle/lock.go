package battle

import (
	"context"
	"fmt"
)

// Locker provides the mutual-exclusion domain for the single battle record.
// Lock blocks until the lock is held or ctx is done; the returned function
// releases it and is safe to call once.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// MutexLocker is an in-process Locker. It is sufficient when one process
// owns the store. Unlike sync.Mutex, waiting can be abandoned through ctx.
type MutexLocker struct {
	ch chan struct{}
}

var _ Locker = (*MutexLocker)(nil)

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{ch: make(chan struct{}, 1)}
}

func (m *MutexLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case m.ch <- struct{}{}:
		return func() { <-m.ch }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for battle lock: %w", ctx.Err())
	}
}

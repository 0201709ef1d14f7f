package battle

import (
	"errors"
	"fmt"
)

// Kind classifies failures that callers must treat differently.
type Kind string

const (
	KindPersistence  Kind = "PERSISTENCE"
	KindInvalidInput Kind = "INVALID_INPUT"
)

var (
	// ErrPersistence matches any store, lock or corrupt-record failure.
	ErrPersistence = &Error{Kind: KindPersistence}
	// ErrInvalidInput matches rejected arguments such as an empty attacker id.
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
)

// Error is a classified engine failure. A rejected attack is never an Error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so errors.Is(err, ErrPersistence) works for any op.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// PersistenceError wraps a storage failure. Wrapping an existing persistence
// error keeps the innermost op.
func PersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) && existing.Kind == KindPersistence {
		return err
	}
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// InvalidInput reports a bad argument.
func InvalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Err: fmt.Errorf(format, args...)}
}

package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a lookup that matched no record. It is a normal
	// outcome and is never wrapped in *Error.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidSortField is returned for a sort field outside the entity's allow-list.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrNoUnitOfWork is returned when a write is staged on a context that
	// did not come from UnitOfWork.Begin.
	ErrNoUnitOfWork = errors.New("no unit of work in context")
)

// Error marks a failure that originated in the entity store or its commit.
type Error struct {
	Op     string
	Entity string
	Err    error
}

func (e *Error) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err as a store error. Nil and ErrNotFound pass through untouched.
func Wrap(op, entity string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}
	return &Error{Op: op, Entity: entity, Err: err}
}

// IsStoreError reports whether err came from the store layer.
func IsStoreError(err error) bool {
	var storeErr *Error
	return errors.As(err, &storeErr)
}

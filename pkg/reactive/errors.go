package reactive

import (
	"errors"
	"fmt"
)

// ErrReadOnly is returned when writing to a read-only slot: a Const value, a
// struct field tagged readonly, or any key of a Deferred.
var ErrReadOnly = errors.New("reactive: property is read-only")

// ErrInvalidKey is returned when a key has the wrong type for the container,
// for example a non-string key on a Record or a non-int index on a Sequence.
var ErrInvalidKey = errors.New("reactive: invalid key")

// ErrInvalidValue is returned by Set.Set when the value is not a bool.
var ErrInvalidValue = errors.New("reactive: invalid value")

// ErrOutOfRange is returned for sequence indices outside [0, Len()].
var ErrOutOfRange = errors.New("reactive: index out of range")

// ErrUnhashable is returned when a mapping key or set member is not
// comparable and therefore cannot be stored.
var ErrUnhashable = errors.New("reactive: key is not comparable")

// ErrEmpty is returned when removing from an empty sequence.
var ErrEmpty = errors.New("reactive: sequence is empty")

// ErrNotTracked is returned by helpers that require an Observable.
var ErrNotTracked = errors.New("reactive: value is not tracked")

// KeyError describes a failed accessor operation.
type KeyError struct {
	Op   string // "set", "delete", "add"
	Kind Kind
	Key  any
	Err  error
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	return fmt.Sprintf("%s %s[%v]: %v", e.Op, e.Kind, e.Key, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is support.
func (e *KeyError) Unwrap() error {
	return e.Err
}

func keyError(op string, kind Kind, key any, err error) error {
	return &KeyError{Op: op, Kind: kind, Key: key, Err: err}
}

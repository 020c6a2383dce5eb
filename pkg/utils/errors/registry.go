package errors

import (
	"errors"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[int]*Errno)
)

// Register records an Errno in the global registry and returns it.
// Registering the same code twice panics: codes must be globally unique.
func Register(e *Errno) *Errno {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[e.Code]; exists {
		panic("errors: duplicate error code registered")
	}
	registry[e.Code] = e
	return e
}

// Lookup returns the registered Errno for a code.
func Lookup(code int) (*Errno, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[code]
	return e, ok
}

// FromError extracts the Errno from an error chain.
// Plain errors map to ErrInternal with the original as cause.
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	var e *Errno
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}

package resultcache

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable matches any backend failure during lookup or store.
	// A miss is never reported with this error.
	ErrStoreUnavailable = errors.New("result store unavailable")
	ErrInvalidOwner     = errors.New("owner id is required")
	ErrInvalidPayload   = errors.New("payload must be valid JSON")
)

// StoreError wraps a backend failure. It matches both ErrStoreUnavailable
// and the underlying cause with errors.Is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("result cache %s: %v: %v", e.Op, ErrStoreUnavailable, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

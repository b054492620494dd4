package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage rejects blank input before any side effect.
	ErrEmptyMessage = errors.New("chat: message is required")
	// ErrAccessDenied means the caller asked for another user's data.
	ErrAccessDenied = errors.New("chat: access denied")
	// ErrSessionNotFound means the conversation does not exist or is not
	// visible to the caller.
	ErrSessionNotFound = errors.New("chat: session not found")
)

// StorageError wraps a failed store operation. Raw database errors stay
// server-side; callers map this to a generic 500.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("chat: storage %s failed: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// Package client is the chat subsystem as seen from a signed-in user's
// device: the conversation directory, the roster of eligible counterparts,
// the one open conversation session, the optimistic send pipeline, the
// realtime channel, and the typing-presence tracker.
//
// Components are mutex-guarded and safe for concurrent use; REST completions
// and channel events may interleave freely.
package client

import (
	"errors"
	"fmt"
)

// Validation errors: rejected before any network call, no state mutation.
var (
	ErrEmptyContent       = errors.New("chat client: message content is empty")
	ErrNoOpenConversation = errors.New("chat client: no conversation is open")
	ErrNoCounterpart      = errors.New("chat client: counterpart is required")
)

// TransientError wraps a failed backend call. The operation is retryable and
// the component's prior state was left intact.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("chat client: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func transient(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}

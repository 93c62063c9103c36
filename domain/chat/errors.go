package chat

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNamePoolExhausted indicates the name pool and its suffix space
	// could not yield an unassigned name within the retry cap.
	ErrNamePoolExhausted = errors.New("name pool exhausted")
)

// ValidationError reports which message fields failed validation. It is
// recoverable and only ever reported to the offending connection.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid message: " + strings.Join(e.Fields, ", ")
}

// PersistenceError wraps a failure from the message store. The message
// carrying it was never broadcast.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist message: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

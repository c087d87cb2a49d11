package hub

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrReceiveTimeout reports that no frame arrived within the read timeout.
	// It is not a failure; callers poll again.
	ErrReceiveTimeout = errors.New("hub: receive timeout")
	// ErrClosed reports use of a transport or correlator after shutdown.
	ErrClosed = errors.New("hub: connection closed")
)

// ConnectionError wraps a failure to reach the hub or a lost connection.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("hub connection: %v", e.Err)
	}
	return fmt.Sprintf("hub connection %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError carries the hub's reason for rejecting the token.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "hub authentication failed"
	}
	return "hub authentication failed: " + e.Message
}

// ProtocolError reports a frame that violates the expected exchange.
type ProtocolError struct {
	Reason string
	Frame  json.RawMessage
	Err    error
}

func (e *ProtocolError) Error() string {
	msg := "hub protocol violation: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// CommandError is a failed or rejected reply to one command. It is scoped to
// the caller that issued the command.
type CommandError struct {
	ID      int
	Type    string
	Code    string
	Message string
	Raw     json.RawMessage
}

func (e *CommandError) Error() string {
	detail := e.Message
	if e.Code != "" {
		detail = e.Code + ": " + e.Message
	}
	if detail == "" {
		detail = "command failed"
	}
	return fmt.Sprintf("hub command %s (id %d): %s", e.Type, e.ID, detail)
}

// StartupError marks the snapshot step that failed.
type StartupError struct {
	Step string
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup %s: %v", e.Step, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

func protocolErrorf(frame json.RawMessage, format string, args ...any) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...), Frame: frame}
}

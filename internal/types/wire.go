package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	MessageAuthRequired = "auth_required"
	MessageAuth         = "auth"
	MessageAuthOK       = "auth_ok"
	MessageAuthInvalid  = "auth_invalid"
	MessageResult       = "result"
	MessageEvent        = "event"
)

var ErrUnknownMessage = errors.New("unknown message type")

// Envelope is the raw shape shared by every frame the hub sends.
type Envelope struct {
	ID        int             `json:"id,omitempty"`
	Type      string          `json:"type"`
	Success   *bool           `json:"success,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
	Error     *HubError       `json:"error,omitempty"`
	HAVersion string          `json:"ha_version,omitempty"`
	Message   string          `json:"message,omitempty"`
}

type HubError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuthMessage is the single frame a client sends before authentication.
type AuthMessage struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token"`
}

// Message is a validated inbound frame. The concrete type is one of
// AuthRequired, AuthOK, AuthInvalid, Result or Event.
type Message interface {
	MessageType() string
}

type AuthRequired struct {
	HubVersion string
}

type AuthOK struct {
	HubVersion string
}

type AuthInvalid struct {
	Message string
}

type Result struct {
	ID      int
	Success bool
	Result  json.RawMessage
	Error   *HubError
	Raw     json.RawMessage
}

type Event struct {
	ID    int
	Event json.RawMessage
	Raw   json.RawMessage
}

func (AuthRequired) MessageType() string { return MessageAuthRequired }
func (AuthOK) MessageType() string       { return MessageAuthOK }
func (AuthInvalid) MessageType() string  { return MessageAuthInvalid }
func (Result) MessageType() string       { return MessageResult }
func (Event) MessageType() string        { return MessageEvent }

// CorrelationID returns the command id carried by results and events.
func CorrelationID(msg Message) (int, bool) {
	switch m := msg.(type) {
	case Result:
		return m.ID, true
	case Event:
		return m.ID, true
	default:
		return 0, false
	}
}

// DecodeMessage parses one inbound frame and checks the fields its type
// requires. Frames with an unrecognised type return ErrUnknownMessage.
func DecodeMessage(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	switch strings.TrimSpace(env.Type) {
	case MessageAuthRequired:
		return AuthRequired{HubVersion: env.HAVersion}, nil
	case MessageAuthOK:
		return AuthOK{HubVersion: env.HAVersion}, nil
	case MessageAuthInvalid:
		return AuthInvalid{Message: env.Message}, nil
	case MessageResult:
		if env.ID <= 0 {
			return nil, errors.New("result frame without id")
		}
		if env.Success == nil {
			return nil, fmt.Errorf("result frame %d without success flag", env.ID)
		}
		return Result{
			ID:      env.ID,
			Success: *env.Success,
			Result:  env.Result,
			Error:   env.Error,
			Raw:     append(json.RawMessage(nil), data...),
		}, nil
	case MessageEvent:
		if env.ID <= 0 {
			return nil, errors.New("event frame without id")
		}
		if len(env.Event) == 0 || string(env.Event) == "null" {
			return nil, fmt.Errorf("event frame %d without payload", env.ID)
		}
		return Event{ID: env.ID, Event: env.Event, Raw: append(json.RawMessage(nil), data...)}, nil
	case "":
		return nil, errors.New("frame without type")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
}

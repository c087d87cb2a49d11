package hub

import (
	"context"
	"errors"
	"fmt"

	"hubview/internal/types"
)

type AuthState int

const (
	Disconnected AuthState = iota
	AwaitingAuthBanner
	AwaitingAuthResult
	Authenticated
	AuthFailed
	ProtocolFailed
)

func (s AuthState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case AwaitingAuthBanner:
		return "awaiting_auth_banner"
	case AwaitingAuthResult:
		return "awaiting_auth_result"
	case Authenticated:
		return "authenticated"
	case AuthFailed:
		return "auth_failed"
	case ProtocolFailed:
		return "protocol_failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s AuthState) Terminal() bool {
	return s == Authenticated || s == AuthFailed || s == ProtocolFailed
}

// Handshake drives the authentication exchange on a fresh transport.
type Handshake struct {
	transport  Transport
	state      AuthState
	hubVersion string
}

func NewHandshake(t Transport) *Handshake {
	return &Handshake{transport: t, state: Disconnected}
}

func (h *Handshake) State() AuthState { return h.state }

// HubVersion is the version the hub announced in its banner.
func (h *Handshake) HubVersion() string { return h.hubVersion }

// Run performs the exchange: wait for auth_required, send the token, wait for
// auth_ok. Receive timeouts are retried until ctx expires.
func (h *Handshake) Run(ctx context.Context, token string) error {
	if h.state != Disconnected {
		return fmt.Errorf("handshake already ran (state %s)", h.state)
	}
	h.state = AwaitingAuthBanner
	msg, err := h.next(ctx)
	if err != nil {
		return h.fail(err)
	}
	banner, ok := msg.(types.AuthRequired)
	if !ok {
		return h.fail(protocolErrorf(nil, "expected %s, got %s", types.MessageAuthRequired, msg.MessageType()))
	}
	h.hubVersion = banner.HubVersion

	auth := types.AuthMessage{Type: types.MessageAuth, AccessToken: token}
	if err := h.transport.Send(ctx, auth); err != nil {
		return h.fail(err)
	}
	h.state = AwaitingAuthResult

	msg, err = h.next(ctx)
	if err != nil {
		return h.fail(err)
	}
	switch m := msg.(type) {
	case types.AuthOK:
		if m.HubVersion != "" {
			h.hubVersion = m.HubVersion
		}
		h.state = Authenticated
		return nil
	case types.AuthInvalid:
		h.state = AuthFailed
		return &AuthError{Message: m.Message}
	default:
		return h.fail(protocolErrorf(nil, "expected auth result, got %s", msg.MessageType()))
	}
}

func (h *Handshake) next(ctx context.Context) (types.Message, error) {
	for {
		data, err := h.transport.Receive(ctx)
		if errors.Is(err, ErrReceiveTimeout) {
			continue
		}
		if err != nil {
			return nil, err
		}
		msg, err := types.DecodeMessage(data)
		if err != nil {
			return nil, &ProtocolError{Reason: "undecodable frame during authentication", Frame: data, Err: err}
		}
		return msg, nil
	}
}

func (h *Handshake) fail(err error) error {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		h.state = ProtocolFailed
	} else {
		h.state = Disconnected
	}
	return err
}

// Authenticate runs a handshake on t and returns the announced hub version.
func Authenticate(ctx context.Context, t Transport, token string) (string, error) {
	h := NewHandshake(t)
	if err := h.Run(ctx, token); err != nil {
		return "", err
	}
	return h.HubVersion(), nil
}
